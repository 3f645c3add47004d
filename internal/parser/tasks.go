package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var taskRe = regexp.MustCompile(`^([ \t]*)- \[([ xX])\](?:[ \t]+(.*))?$`)

// Task is one checkbox line.
type Task struct {
	// Line is the 1-based file line.
	Line   int
	Indent string
	Done   bool
	Text   string
}

// Tasks returns the checkbox lines of data in file order. Lines inside the
// front matter block or fenced code are not tasks.
func Tasks(data []byte) []Task {
	var out []Task
	scanBody(data, true, func(line int, text string) {
		if t, ok := matchTask(text); ok {
			t.Line = line
			out = append(out, t)
		}
	})
	return out
}

func matchTask(line string) (Task, bool) {
	m := taskRe.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}
	return Task{
		Indent: m[1],
		Done:   m[2] != " ",
		Text:   strings.TrimSpace(m[3]),
	}, true
}

// CompleteTask rewrites the open checkbox on the given 1-based line to
// "[x]". Everything else in data, including indentation, trailing text and
// line endings, is kept byte for byte.
func CompleteTask(data []byte, line int) ([]byte, error) {
	text := string(data)
	start := 0
	for n := 1; n < line; n++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			return nil, fmt.Errorf("parser: line %d out of range", line)
		}
		start += i + 1
	}
	end := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		end = start + i
	}

	cur := strings.TrimSuffix(text[start:end], "\r")
	t, ok := matchTask(cur)
	if !ok {
		return nil, fmt.Errorf("parser: line %d is not a task", line)
	}
	if t.Done {
		return nil, fmt.Errorf("parser: task on line %d already completed", line)
	}
	marker := start + len(t.Indent) + len("- [")
	out := make([]byte, 0, len(data))
	out = append(out, data[:marker]...)
	out = append(out, 'x')
	out = append(out, data[marker+1:]...)
	return out, nil
}
