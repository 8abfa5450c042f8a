package spoolverb

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/spool-explorer/common/errs"
)

const (
	DefaultMeta    = "ASCRIBESPOOL"
	DefaultVersion = "01"

	// loanDateLen is the length of each half of a LOAN window argument (YYMMDD).
	loanDateLen = 6
)

// Verb is a decoded SPOOL verb, e.g. ASCRIBESPOOL01LOAN1/150101150131.
type Verb struct {
	Meta    string
	Version string
	Action  Action

	// EditionNumber is the edition the verb applies to. 0 is the master edition (the piece).
	EditionNumber int

	// NumEditions is the announced total, only set for EDITIONS.
	NumEditions int

	// LoanStart and LoanEnd are the YYMMDD bounds of a LOAN.
	LoanStart string
	LoanEnd   string
}

// verbRegex matches <META><VERSION><ACTION>[<ARG1>][/<ARG2>].
var verbRegex = regexp.MustCompile(`^([A-Z]+)(\d+)([A-Z]+)(\d+)?(?:/(\d+))?$`)

var (
	ErrMalformedVerb   = errors.Wrap(errs.InvalidArgument, "malformed spool verb")
	ErrMissingEdition  = errors.Wrap(errs.InvalidArgument, "missing edition number")
	ErrInvalidLoanSpan = errors.Wrap(errs.InvalidArgument, "invalid loan window")
)

// String returns the on-chain representation of the verb.
// The verb is not validated, use Codec.Encode for that.
func (v Verb) String() string {
	var sb strings.Builder
	sb.WriteString(v.Meta)
	sb.WriteString(v.Version)
	sb.WriteString(string(v.Action))
	switch v.Action {
	case ActionEditions:
		sb.WriteString(strconv.Itoa(v.NumEditions))
	case ActionLoan:
		sb.WriteString(strconv.Itoa(v.EditionNumber))
		sb.WriteByte('/')
		sb.WriteString(v.LoanStart)
		sb.WriteString(v.LoanEnd)
	case ActionFuel, ActionPiece, ActionConsignedRegistration:
	default:
		sb.WriteString(strconv.Itoa(v.EditionNumber))
	}
	return sb.String()
}

// parseVerb splits a verb into its fields without checking meta, version or action.
func parseVerb(s string) (Verb, error) {
	matches := verbRegex.FindStringSubmatch(s)
	if matches == nil {
		return Verb{}, errors.Wrapf(ErrMalformedVerb, "%q", s)
	}
	meta, version, action, arg1, arg2 := matches[1], matches[2], Action(matches[3]), matches[4], matches[5]

	verb := Verb{
		Meta:    meta,
		Version: version,
		Action:  action,
	}

	switch action {
	case ActionEditions:
		n, err := parseArg(arg1)
		if err != nil {
			return Verb{}, errors.Wrap(err, "invalid number of editions")
		}
		verb.NumEditions = n
	case ActionLoan:
		// a loan of the piece itself has no edition
		if arg1 != "" {
			n, err := parseArg(arg1)
			if err != nil {
				return Verb{}, errors.Wrap(err, "invalid edition number")
			}
			verb.EditionNumber = n
		}
		if len(arg2) != 2*loanDateLen {
			return Verb{}, errors.Wrapf(ErrInvalidLoanSpan, "%q", arg2)
		}
		verb.LoanStart, verb.LoanEnd = arg2[:loanDateLen], arg2[loanDateLen:]
	case ActionFuel, ActionPiece, ActionConsignedRegistration:
	default:
		if arg1 == "" {
			return Verb{}, errors.Wrapf(ErrMissingEdition, "%s verb", action)
		}
		n, err := parseArg(arg1)
		if err != nil {
			return Verb{}, errors.Wrap(err, "invalid edition number")
		}
		verb.EditionNumber = n
	}
	return verb, nil
}

func parseArg(s string) (int, error) {
	if s == "" {
		return 0, errors.WithStack(ErrMissingEdition)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(errs.InvalidArgument, err.Error())
	}
	return n, nil
}
