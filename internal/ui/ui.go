// Package ui wraps fzf for one-shot selections outside the TUI.
// Entries reach fzf as plain text on stdin; no preview commands or other
// shell-evaluated strings carry remote data.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"marquee/internal/media"
)

// ErrCancelled is returned when the user aborts fzf (esc / ctrl-c).
var ErrCancelled = errors.New("selection cancelled")

// fzfExitInterrupted is fzf's exit code for esc / ctrl-c.
const fzfExitInterrupted = 130

// Select presents entries via fzf and returns the chosen index.
func Select(prompt string, entries []string) (int, error) {
	if len(entries) == 0 {
		return -1, fmt.Errorf("no entries to select from")
	}

	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return -1, fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command(fzfPath,
		"--prompt", prompt+" > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..", // hide the index column
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	)
	cmd.Stdin = strings.NewReader(numbered(entries))
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == fzfExitInterrupted {
			return -1, ErrCancelled
		}
		return -1, fmt.Errorf("fzf failed: %w", err)
	}

	return parseSelection(stdout.String(), len(entries))
}

// SelectItem presents catalog items by display title.
func SelectItem(prompt string, items []media.Item) (media.Item, error) {
	entries := make([]string, len(items))
	for i, it := range items {
		entries[i] = media.FormatDisplayTitle(it)
	}
	idx, err := Select(prompt, entries)
	if err != nil {
		return media.Item{}, err
	}
	return items[idx], nil
}

// SelectSeason lets the user pick a season and returns its number.
func SelectSeason(seasons []media.Season) (media.Season, error) {
	entries := make([]string, len(seasons))
	for i, s := range seasons {
		entries[i] = fmt.Sprintf("%s (%d episodes)", s.Name, s.EpisodeCount)
	}
	idx, err := Select("Season", entries)
	if err != nil {
		return media.Season{}, err
	}
	return seasons[idx], nil
}

// SelectEpisode lets the user pick an episode number in 1..count.
func SelectEpisode(count int) (int, error) {
	entries := make([]string, count)
	for i := range entries {
		entries[i] = "Episode " + strconv.Itoa(i+1)
	}
	idx, err := Select("Episode", entries)
	if err != nil {
		return 0, err
	}
	return idx + 1, nil
}

// Confirm asks a yes/no question via fzf.
func Confirm(prompt string) (bool, error) {
	idx, err := Select(prompt, []string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

// Input prompts for free text via fzf's --print-query.
func Input(prompt string) (string, error) {
	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return "", fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command(fzfPath,
		"--prompt", prompt+" > ",
		"--height", "10%",
		"--reverse",
		"--print-query",
		"--no-info",
	)
	cmd.Stdin = strings.NewReader("")
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// fzf exits 1 with --print-query and no match.
	_ = cmd.Run()

	query := strings.TrimSpace(strings.Split(stdout.String(), "\n")[0])
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}
	return query, nil
}

// numbered prefixes each entry with its index so the selection can be
// mapped back regardless of duplicate titles. Tabs and newlines inside an
// entry would break the line format and are replaced.
func numbered(entries []string) string {
	clean := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\t%s\n", i, clean.Replace(e))
	}
	return b.String()
}

func parseSelection(out string, n int) (int, error) {
	selected := strings.TrimSpace(out)
	if selected == "" {
		return -1, ErrCancelled
	}

	field, _, _ := strings.Cut(selected, "\t")
	idx, err := strconv.Atoi(field)
	if err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}
	if idx < 0 || idx >= n {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}
	return idx, nil
}
