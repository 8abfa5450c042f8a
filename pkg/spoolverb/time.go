package spoolverb

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
)

// LedgerTimeLayout is the layout block explorers report transaction times in, e.g. "2015-10-21T16:29:03 UTC".
const LedgerTimeLayout = "2006-01-02T15:04:05 MST"

// ParseLedgerTime parses a LedgerTimeLayout string into a UTC time.
func ParseLedgerTime(s string) (time.Time, error) {
	t, err := time.Parse(LedgerTimeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	return t.UTC(), nil
}

// FormatLedgerTime formats t in LedgerTimeLayout.
func FormatLedgerTime(t time.Time) string {
	return t.UTC().Format(LedgerTimeLayout)
}

// loanDateLayout is the layout of LoanStart and LoanEnd.
const loanDateLayout = "060102"

// LoanWindow returns the dates bounding a LOAN verb.
func (v Verb) LoanWindow() (start, end time.Time, err error) {
	if v.Action != ActionLoan {
		return time.Time{}, time.Time{}, errors.Wrapf(errs.InvalidArgument, "%s verb has no loan window", v.Action)
	}
	start, err = time.Parse(loanDateLayout, v.LoanStart)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	end, err = time.Parse(loanDateLayout, v.LoanEnd)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	return start, end, nil
}
