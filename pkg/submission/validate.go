// Package submission holds the bookkeeping around a packed submission:
// normalising the assignment label and student identifiers, rendering the
// command line shown in the screenshot, and laying out the submission folder
// and its zip archive.
package submission

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/assignpack/pkg/errors"
)

const assignmentPrefix = "assignment"

// ParseAssignment accepts "7" or "Assignment7" (any case) and returns the
// canonical label together with its number.
func ParseAssignment(input string) (string, uint32, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", 0, errors.New(errors.ErrCodeInvalidAssignment, "assignment cannot be empty")
	}

	digits := s
	if len(s) >= len(assignmentPrefix) && strings.EqualFold(s[:len(assignmentPrefix)], assignmentPrefix) {
		digits = strings.TrimSpace(s[len(assignmentPrefix):])
		if digits == "" {
			return "", 0, errors.New(errors.ErrCodeInvalidAssignment,
				"incomplete assignment label, use '7' or 'Assignment7'")
		}
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", 0, errors.New(errors.ErrCodeInvalidAssignment,
				"assignment must be a number (e.g. 7) or label (e.g. Assignment7)")
		}
	}

	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return "", 0, errors.New(errors.ErrCodeInvalidAssignment, "assignment number too large")
	}
	if n == 0 {
		return "", 0, errors.New(errors.ErrCodeInvalidAssignment, "assignment number must be greater than 0")
	}
	return "Assignment" + strconv.FormatUint(n, 10), uint32(n), nil
}

// CleanName strips every whitespace rune from input and validates the result
// for use in file names. label names the field in error messages.
func CleanName(input, label string) (string, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)

	if err := errors.ValidateIdentifier(label, compact); err != nil {
		return "", err
	}
	return compact, nil
}

// DisplayVars are the values a display template can reference.
type DisplayVars struct {
	Assignment string
	Number     uint32
	Name       string
	StudentID  string
	SourcePath string
}

// DefaultDisplayCommand is the command shown when no template is configured:
// the assignment label, with ".exe" on Windows.
func DefaultDisplayCommand(assignment string) string {
	if runtime.GOOS == "windows" {
		return assignment + ".exe"
	}
	return assignment
}

// RenderDisplayCommand expands tpl, or returns the default command when tpl
// is nil. Supported placeholders:
//
//	{assignment} {assignment_number} {name} {id} {c_file} {c_stem}
//
// A blank template and a template that expands to nothing are both errors.
func RenderDisplayCommand(tpl *string, v DisplayVars) (string, error) {
	if tpl == nil {
		return DefaultDisplayCommand(v.Assignment), nil
	}
	t := strings.TrimSpace(*tpl)
	if t == "" {
		return "", errors.New(errors.ErrCodeInvalidTemplate, "run-display-template cannot be blank")
	}

	cFile, err := FileName(v.SourcePath)
	if err != nil {
		return "", err
	}
	cStem := strings.TrimSuffix(cFile, filepath.Ext(cFile))
	if cStem == "" {
		cStem = "program"
	}

	out := strings.NewReplacer(
		"{assignment_number}", strconv.FormatUint(uint64(v.Number), 10),
		"{assignment}", v.Assignment,
		"{name}", v.Name,
		"{id}", v.StudentID,
		"{c_file}", cFile,
		"{c_stem}", cStem,
	).Replace(t)

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New(errors.ErrCodeInvalidTemplate, "run-display-template produced an empty result")
	}
	return out, nil
}

// BaseName is "<assignment>_<name>_<id>", the stem shared by the document,
// folder and archive names.
func BaseName(assignment, name, studentID string) string {
	return assignment + "_" + name + "_" + studentID
}

// DocName is the expected document file name.
func DocName(assignment, name, studentID string) string {
	return BaseName(assignment, name, studentID) + ".doc"
}

// FolderName is the submission folder name; the archive is FolderName + ".zip".
func FolderName(assignment, name, studentID string) string {
	return BaseName(assignment, name, studentID) + "_Submission"
}
