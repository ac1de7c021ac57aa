// Package compare checks produced simulation artifacts against baselines by
// content hash.
package compare

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Status is the externally visible outcome of a comparison.
type Status int

const (
	NotStarted Status = iota
	Success
	Fail
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Success:
		return "SUCCESS"
	case Fail:
		return "FAIL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Reason explains a Fail. Several reasons collapse into the same Status but
// are logged differently: a missing file is a harder error than a mismatch.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMissingProduced
	ReasonMissingBaseline
	ReasonMismatch
	ReasonReadError
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMissingProduced:
		return "produced file missing"
	case ReasonMissingBaseline:
		return "baseline file missing"
	case ReasonMismatch:
		return "content mismatch"
	case ReasonReadError:
		return "read error"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Missing reports whether the reason is an absent file on either side.
func (r Reason) Missing() bool {
	return r == ReasonMissingProduced || r == ReasonMissingBaseline
}

// FileComparison is the expected equivalence of one produced file to one
// baseline file.
type FileComparison struct {
	Produced string `json:"produced"`
	Baseline string `json:"baseline"`

	status Status
	reason Reason
	err    error
}

// New creates a comparison in the NotStarted state.
func New(produced, baseline string) *FileComparison {
	return &FileComparison{Produced: produced, Baseline: baseline}
}

// Status returns the outcome of the last Compare call.
func (c *FileComparison) Status() Status { return c.status }

// Reason returns why the last Compare call failed, or ReasonNone.
func (c *FileComparison) Reason() Reason { return c.reason }

// Err returns the underlying I/O error of the last Compare call, if any.
func (c *FileComparison) Err() error { return c.err }

// Compare hashes both files and records the outcome. It only reads the two
// files, so calling it again on unchanged files yields the same result.
func (c *FileComparison) Compare() Status {
	c.status, c.reason, c.err = c.evaluate()
	return c.status
}

func (c *FileComparison) evaluate() (Status, Reason, error) {
	produced, err := HashFile(c.Produced)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Fail, ReasonMissingProduced, err
		}
		return Fail, ReasonReadError, err
	}
	baseline, err := HashFile(c.Baseline)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Fail, ReasonMissingBaseline, err
		}
		return Fail, ReasonReadError, err
	}
	if produced != baseline {
		return Fail, ReasonMismatch, nil
	}
	return Success, ReasonNone, nil
}

// Describe renders the comparison outcome for logs.
func (c *FileComparison) Describe() string {
	switch c.status {
	case Success:
		return fmt.Sprintf("%s matches %s", c.Produced, c.Baseline)
	case Fail:
		if c.reason.Missing() || c.reason == ReasonReadError {
			return fmt.Sprintf("%s: %v", c.reason, c.err)
		}
		return fmt.Sprintf("%s: %s differs from %s", c.reason, c.Produced, c.Baseline)
	default:
		return "not compared"
	}
}

// HashFile returns the hex-encoded SHA-256 of the file's contents.
// Directories are rejected so that a pattern matching a directory fails
// loudly instead of comparing equal.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
