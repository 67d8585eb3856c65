package model

// NumberedQuestion is an answerable question with its survey-wide display number
type NumberedQuestion struct {
	Question
	Number int `json:"number"`
}

// Section is a run of questions that follows a section header, or the
// untitled run before the first header.
type Section struct {
	Title     string             `json:"title,omitempty"`
	HeaderID  string             `json:"headerId,omitempty"`
	Questions []NumberedQuestion `json:"questions"`
}

// Sections partitions the question list at section headers. Numbering is
// 1-based across the whole survey and headers are never numbered. An untitled
// section without questions is dropped; a titled one is kept even when empty.
func (s *Survey) Sections() []Section {
	var sections []Section
	current := Section{}
	number := 0

	flush := func() {
		if current.Title == "" && len(current.Questions) == 0 {
			return
		}
		sections = append(sections, current)
	}

	for _, q := range s.Questions {
		if q.IsHeader() {
			flush()
			current = Section{Title: q.Title, HeaderID: q.ID}
			continue
		}
		number++
		current.Questions = append(current.Questions, NumberedQuestion{Question: q, Number: number})
	}
	flush()

	return sections
}
