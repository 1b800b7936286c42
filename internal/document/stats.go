package document

import "strings"

// Stats summarizes a document's content for the info command and reports.
type Stats struct {
	WordCount          int
	CharacterCount     int
	SentenceCount      int
	ChapterCount       int
	ImageCount         int
	ResourceSizeBytes  int64
	ReadingTimeMinutes float64
}

// Average silent reading speed used for the time estimate.
const wordsPerMinute = 250.0

// Stats computes reading statistics over all chapters.
func (d *Document) Stats() Stats {
	s := Stats{ChapterCount: len(d.Content)}

	for _, ch := range d.Content {
		for _, node := range ch.Content {
			countNode(node, &s)
		}
	}
	for _, res := range d.Resources {
		s.ResourceSizeBytes += int64(len(res.Data))
	}
	s.ReadingTimeMinutes = float64(s.WordCount) / wordsPerMinute
	return s
}

func countNode(node ContentNode, s *Stats) {
	switch v := node.(type) {
	case Paragraph:
		countText(FlattenInlines(v.Children), s)
	case Heading:
		countText(FlattenInlines(v.Children), s)
	case List:
		for _, item := range v.Items {
			for _, sub := range item {
				countNode(sub, s)
			}
		}
	case Table:
		for _, cell := range v.Headers {
			countText(FlattenInlines(cell), s)
		}
		for _, row := range v.Rows {
			for _, cell := range row {
				countText(FlattenInlines(cell), s)
			}
		}
	case BlockQuote:
		for _, c := range v.Children {
			countNode(c, s)
		}
	case CodeBlock:
		countText(v.Code, s)
	case Image:
		s.ImageCount++
	}
}

func countText(text string, s *Stats) {
	s.WordCount += len(strings.Fields(text))
	s.CharacterCount += len([]rune(text))
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s.SentenceCount++
		}
	}
}
