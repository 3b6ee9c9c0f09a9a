// Package parser turns an issue file's name and content into a models.IssueFile.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thomas-vilte/issuesync/internal/models"
	"github.com/thomas-vilte/issuesync/internal/regex"
)

var (
	ErrInvalidName  = errors.New("filename does not match <digits>-<slug>.md")
	ErrEmptyContent = errors.New("file content is empty")
)

// ParseName extracts the numeric prefix and slug from a base filename.
func ParseName(name string) (number int, width int, slug string, err error) {
	m := regex.IssueFileName.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, "", ErrInvalidName
	}

	number, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	return number, len(m[1]), m[2], nil
}

// Parse builds the IssueFile for name with the given raw content.
func Parse(name, path, content string) (*models.IssueFile, error) {
	number, width, slug, err := ParseName(name)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	file := &models.IssueFile{
		Name:         name,
		Path:         path,
		FileNumber:   number,
		NumberWidth:  width,
		Slug:         slug,
		Content:      content,
		Body:         content,
		DerivedTitle: strings.ReplaceAll(slug, "-", " "),
	}

	if flagged, rest, ok := splitBanner(content); ok {
		file.FlaggedNumber = &flagged
		file.Body = rest
		if strings.TrimSpace(rest) == "" {
			return nil, ErrEmptyContent
		}
	}

	firstLine, _, _ := strings.Cut(file.Body, "\n")
	if m := regex.IssueHeader.FindStringSubmatch(strings.TrimSpace(firstLine)); m != nil {
		if embedded, err := strconv.Atoi(m[1]); err == nil {
			file.EmbeddedNumber = &embedded
			file.DerivedTitle = strings.TrimSpace(m[2])
		}
	}

	return file, nil
}

// splitBanner detects a leading drift banner and returns the issue number it
// records together with the content that follows it.
func splitBanner(content string) (int, string, bool) {
	lines := strings.Split(content, "\n")
	m := regex.DriftMarker.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return 0, content, false
	}

	issue, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, content, false
	}

	i := 1
	for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), ">") {
		i++
	}
	if i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	return issue, strings.Join(lines[i:], "\n"), true
}
