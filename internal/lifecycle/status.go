package lifecycle

import "fmt"

type Status string

const (
	Pending    Status = "pending"
	Verified   Status = "verified"
	Accepted   Status = "accepted"
	InProgress Status = "in_progress"
	Matched    Status = "matched"
	Handled    Status = "handled"
	Completed  Status = "completed"
	Rejected   Status = "rejected"
	Cancelled  Status = "cancelled"

	// order vocabulary
	New        Status = "new"
	Processing Status = "processing"
	Done       Status = "done"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further administrator action is expected.
func (s Status) IsTerminal() bool {
	switch s {
	case Rejected, Cancelled, Handled, Completed, Done:
		return true
	}

	return false
}

type Domain string

const (
	Medicine          Domain = "medicine"
	BloodDonor        Domain = "blood_donor"
	DiasporaVolunteer Domain = "diaspora_volunteer"
	Exchange          Domain = "exchange"
	Import            Domain = "import"
	Agent             Domain = "agent"
	Order             Domain = "order"
)

type vocabulary struct {
	statuses []Status
	public   map[Status]bool
}

// Statuses are listed in lifecycle order, the first one is the initial status.
var vocabularies = map[Domain]vocabulary{
	Medicine: {
		statuses: []Status{Pending, Verified, Accepted, InProgress, Handled, Rejected},
		public:   map[Status]bool{Accepted: true, InProgress: true, Handled: true},
	},
	BloodDonor: {
		statuses: []Status{Pending, Verified, Matched, Rejected},
	},
	DiasporaVolunteer: {
		statuses: []Status{Pending, Verified, Rejected},
	},
	Exchange: {
		statuses: []Status{Pending, Accepted, InProgress, Completed, Rejected, Cancelled},
	},
	Import: {
		statuses: []Status{Pending, Accepted, InProgress, Completed, Rejected, Cancelled},
	},
	Agent: {
		statuses: []Status{Pending, Accepted, Rejected},
	},
	Order: {
		statuses: []Status{New, Processing, Done, Cancelled},
	},
}

var requestDomains = []Domain{Medicine, BloodDonor, DiasporaVolunteer, Exchange, Import, Agent}

// RequestDomains returns every domain tracked as a request, orders excluded.
func RequestDomains() []Domain {
	out := make([]Domain, len(requestDomains))
	copy(out, requestDomains)

	return out
}

func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if _, ok := vocabularies[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
	}

	return d, nil
}

func (d Domain) String() string {
	return string(d)
}

func (d Domain) Initial() Status {
	return vocabularies[d].statuses[0]
}

func (d Domain) Statuses() []Status {
	v := vocabularies[d].statuses
	out := make([]Status, len(v))
	copy(out, v)

	return out
}

func (d Domain) Has(s Status) bool {
	return d.rank(s) >= 0
}

// IsPublic reports whether records of the domain in status s are exposed on
// the public listing.
func (d Domain) IsPublic(s Status) bool {
	return vocabularies[d].public[s]
}

func (d Domain) PublicStatuses() []Status {
	out := make([]Status, 0)
	for _, s := range vocabularies[d].statuses {
		if vocabularies[d].public[s] {
			out = append(out, s)
		}
	}

	return out
}

// HasPublicListing reports whether the domain curates records for public display.
func (d Domain) HasPublicListing() bool {
	return len(vocabularies[d].public) > 0
}

func (d Domain) rank(s Status) int {
	for i, st := range vocabularies[d].statuses {
		if st == s {
			return i
		}
	}

	return -1
}
