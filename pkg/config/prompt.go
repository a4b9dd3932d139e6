package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptCredential asks for the API key stored under key and persists the
// answer. An empty answer or closed input yields a *ConfigError wrapping
// ErrMissingCredential.
func (s *Store) PromptCredential(in io.Reader, out io.Writer, key string) (string, error) {
	fmt.Fprintf(out, "%s is not set. Enter your API key: ", key)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read credential: %w", err)
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", &ConfigError{Key: key, Err: ErrMissingCredential}
	}
	if err := s.SaveCredential(key, value); err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Saved %s to %s\n", key, s.path)
	return value, nil
}
