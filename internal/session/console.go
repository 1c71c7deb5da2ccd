package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Width is the width of framed messages.
const Width = 80

// Console reads answers from the user and renders framed messages.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console over r and w.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewReader(r), out: w}
}

// Prompt prints msg and returns the next input line without the line
// terminator. It returns io.EOF once input is exhausted.
func (c *Console) Prompt(msg string) (string, error) {
	fmt.Fprint(c.out, msg)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(c.out)
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Pause waits for the user to acknowledge the output above.
func (c *Console) Pause() error {
	_, err := c.Prompt("Press any key to continue >> ")
	return err
}

// Confirm asks a Y/N question until it gets a valid answer.
func (c *Console) Confirm(question, retry string) (bool, error) {
	answer, err := c.Prompt(question)
	for err == nil {
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		answer, err = c.Prompt(retry)
	}
	return false, err
}

// Frame prints lines between two rules of delimiter. A single line without
// line breaks is centred.
func (c *Console) Frame(delimiter string, lines ...string) {
	rule := strings.Repeat(delimiter, Width)
	fmt.Fprintln(c.out, rule)
	if len(lines) == 1 && !strings.Contains(lines[0], "\n") {
		fmt.Fprintln(c.out, Center(lines[0], Width))
	} else {
		for _, l := range lines {
			fmt.Fprintln(c.out, l)
		}
	}
	fmt.Fprintln(c.out, rule)
}

// Say frames a message with the default delimiter.
func (c *Console) Say(lines ...string) {
	c.Frame("*", lines...)
}

// Println prints an unframed line.
func (c *Console) Println(s string) {
	fmt.Fprintln(c.out, s)
}

// Printf prints unframed formatted output.
func (c *Console) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// Center pads s with spaces to width, extra space going right.
func Center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// Spread places left and right on one line of the given width with fill
// between them. At least one fill character is kept.
func Spread(left, right string, width int, fill string) string {
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(fill, gap) + right
}
