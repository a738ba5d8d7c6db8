package wordlist

import (
	"fmt"
	"io"
	"os"
)

// LoadText reads the file at path and tokenizes its contents.
func LoadText(path string) (Stream, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stream{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text.
			_ = cerr
		}
	}()
	return ReadText(file)
}

// ReadText tokenizes everything readable from r.
func ReadText(r io.Reader) (Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Stream{}, err
	}
	stream := Tokenize(string(data))
	if stream.Len() == 0 {
		return Stream{}, fmt.Errorf("text contains no words")
	}
	return stream, nil
}
