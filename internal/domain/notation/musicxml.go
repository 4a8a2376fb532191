package notation

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// MusicXML wire structures (score-partwise).

type xmlScore struct {
	XMLName  xml.Name    `xml:"score-partwise"`
	Version  string      `xml:"version,attr"`
	PartList xmlPartList `xml:"part-list"`
	Part     xmlPart     `xml:"part"`
}

type xmlPartList struct {
	ScorePart xmlScorePart `xml:"score-part"`
}

type xmlScorePart struct {
	ID       string `xml:"id,attr"`
	PartName string `xml:"part-name"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Number     string         `xml:"number,attr"`
	Attributes *xmlAttributes `xml:"attributes,omitempty"`
	Notes      []xmlNote      `xml:"note"`
}

type xmlAttributes struct {
	Divisions int     `xml:"divisions"`
	Key       xmlKey  `xml:"key"`
	Time      xmlTime `xml:"time"`
	Clef      xmlClef `xml:"clef"`
}

type xmlKey struct {
	Fifths int `xml:"fifths"`
}

type xmlTime struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type xmlClef struct {
	Sign string `xml:"sign"`
	Line int    `xml:"line"`
}

type xmlNote struct {
	Pitch    xmlPitch `xml:"pitch"`
	Duration int      `xml:"duration"`
	Type     string   `xml:"type"`
}

type xmlPitch struct {
	Step   string `xml:"step"`
	Octave int    `xml:"octave"`
}

const (
	musicXMLVersion = "3.1"
	partID          = "P1"
	partName        = "Music"
)

// MusicXML serializes the document as a score-partwise MusicXML file,
// consumable by any standard notation renderer.
func (d Document) MusicXML() ([]byte, error) {
	score := xmlScore{
		Version:  musicXMLVersion,
		PartList: xmlPartList{ScorePart: xmlScorePart{ID: partID, PartName: partName}},
		Part:     xmlPart{ID: partID, Measures: make([]xmlMeasure, 0, len(d.Measures))},
	}

	for i, m := range d.Measures {
		xm := xmlMeasure{
			Number: strconv.Itoa(i + 1),
			Notes:  make([]xmlNote, 0, len(m.Notes)),
		}
		if m.Attributes != nil {
			a := m.Attributes
			xm.Attributes = &xmlAttributes{
				Divisions: a.Divisions,
				Key:       xmlKey{Fifths: a.KeyFifths},
				Time:      xmlTime{Beats: a.TimeBeats, BeatType: a.TimeBeatType},
				Clef:      xmlClef{Sign: a.Clef.Sign(), Line: a.Clef.Line()},
			}
		}
		for _, n := range m.Notes {
			xm.Notes = append(xm.Notes, xmlNote{
				Pitch:    xmlPitch{Step: n.Step.String(), Octave: n.Octave},
				Duration: n.Duration,
				Type:     n.Type(),
			})
		}
		score.Part.Measures = append(score.Part.Measures, xm)
	}

	body, err := xml.MarshalIndent(score, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal musicxml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
