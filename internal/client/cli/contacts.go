package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/dmitrijs2005/dreamsync/internal/client/repositories/preferences"
)

// FileContacts reads phone numbers from a text file, one per line. Access
// is granted by the contacts_allowed preference.
type FileContacts struct {
	path  string
	prefs preferences.Repository
}

func (c *FileContacts) RequestAccess(ctx context.Context) (bool, error) {
	if c.path == "" {
		return false, nil
	}
	return preferences.GetBool(ctx, c.prefs, preferences.KeyContactsAllowed)
}

func (c *FileContacts) PhoneNumbers(_ context.Context) ([]string, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var phones []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		phones = append(phones, strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, line))
	}
	return phones, sc.Err()
}
