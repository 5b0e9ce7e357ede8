// Package certificate lays out and renders completion certificates.
package certificate

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the render-date format printed on certificates.
const DateLayout = "1/2/2006"

// Page geometry, in points, for an A4 portrait page.
const (
	PageWidth    = 595.28
	PageHeight   = 841.89
	borderInset  = 20
	signatureY   = 386
	signatureLen = 150
)

// Document is the content of one certificate, independent of the output format.
type Document struct {
	StudentName  string
	ExamTitle    string
	Score        int
	Passed       bool
	ExaminerName string
	IssuedOn     time.Time
}

// Line is one centered line of text at a fixed vertical position.
type Line struct {
	Text string
	Size float64
	Bold bool
	Y    float64
}

// Status returns "Passed" or "Failed".
func (d Document) Status() string {
	if d.Passed {
		return "Passed"
	}
	return "Failed"
}

// Lines returns the certificate text top to bottom.
func (d Document) Lines() []Line {
	return []Line{
		{Text: "Certificate of Achievement", Size: 25, Bold: true, Y: 140},
		{Text: "This certifies that " + d.StudentName, Size: 16, Y: 215},
		{Text: "has successfully completed the exam: " + d.ExamTitle, Size: 16, Y: 253},
		{Text: fmt.Sprintf("Score: %d", d.Score), Size: 16, Y: 291},
		{Text: "Status: " + d.Status(), Size: 16, Y: 310},
		{Text: d.ExaminerName, Size: 14, Bold: true, Y: 396},
		{Text: "Examiner", Size: 14, Y: 418},
		{Text: d.IssuedOn.Format(DateLayout), Size: 12, Y: 500},
		{Text: "Completion Date", Size: 12, Y: 517},
	}
}

// Text joins every line, mainly for logging and tests.
func (d Document) Text() string {
	lines := d.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return strings.Join(out, "\n")
}

// StudentDisplayName is the part of a username before the first "@".
func StudentDisplayName(username string) string {
	if i := strings.Index(username, "@"); i >= 0 {
		return username[:i]
	}
	return username
}

// ExaminerDisplayName prefers the examiner's name, then their username's local
// part, then "Examiner".
func ExaminerDisplayName(name, username string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local := StudentDisplayName(username); local != "" {
		return local
	}
	return "Examiner"
}
