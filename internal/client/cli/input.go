package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

const dateLayout = "2006-01-02"

// GetSimpleText prints a prompt to w and reads one trimmed line. A final
// line without a newline is accepted.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo. The caller
// should wipe the returned slice.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline reads lines until an empty one and joins them with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetDate reads a YYYY-MM-DD date in loc. An empty answer yields def.
func GetDate(reader *bufio.Reader, prompt string, w io.Writer, def time.Time, loc *time.Location) (time.Time, error) {
	s, err := GetSimpleText(reader, fmt.Sprintf("%s [%s]", prompt, def.Format(dateLayout)), w)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return def, nil
	}
	return time.ParseInLocation(dateLayout, s, loc)
}

// GetSeverity reads a dream rating from 0 (nightmare) to 10 (great) and
// returns it normalized to [0, 1]. An empty answer yields def.
func GetSeverity(reader *bufio.Reader, w io.Writer, def float64) (float64, error) {
	s, err := GetSimpleText(reader, fmt.Sprintf("Rate the dream 0 (nightmare) .. 10 (great) [%.0f]", def*10), w)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || n > 10 {
		return 0, fmt.Errorf("rating must be a number from 0 to 10")
	}
	return n / 10, nil
}

// GetYesNo reads a y/n answer. An empty answer yields def.
func GetYesNo(reader *bufio.Reader, prompt string, w io.Writer, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	s, err := GetSimpleText(reader, fmt.Sprintf("%s [%s]", prompt, hint), w)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("answer y or n")
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
