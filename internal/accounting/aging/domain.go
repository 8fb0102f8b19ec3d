package aging

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind selects receivables or payables.
type Kind string

const (
	KindReceivable Kind = "AR"
	KindPayable    Kind = "AP"
)

// Bucket names an aging band.
type Bucket string

const (
	BucketCurrent Bucket = "current"
	Bucket30      Bucket = "days_30"
	Bucket60      Bucket = "days_60"
	Bucket90      Bucket = "days_90"
	BucketOver120 Bucket = "over_120"
)

// bucketLimits are inclusive upper bounds in days, tested in order.
var bucketLimits = []struct {
	limit  int
	bucket Bucket
}{
	{30, BucketCurrent},
	{60, Bucket30},
	{90, Bucket60},
	{120, Bucket90},
}

// BucketFor places a day count into its band. Exact boundaries fall into the
// lower band and documents dated after the as-of date count as current.
func BucketFor(days int) Bucket {
	for _, b := range bucketLimits {
		if days <= b.limit {
			return b.bucket
		}
	}
	return BucketOver120
}

// DaysOutstanding counts whole calendar days between the document date and asOf.
func DaysOutstanding(asOf, documentDate time.Time) int {
	a := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(documentDate.Year(), documentDate.Month(), documentDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(d).Hours() / 24)
}

// OpenDocument is an invoice or bill with its settled portion.
type OpenDocument struct {
	CounterpartyID   uuid.UUID
	CounterpartyName string
	DocumentID       int64
	DocumentNumber   string
	DocumentDate     time.Time
	Amount           decimal.Decimal
	Paid             decimal.Decimal
}

// Outstanding returns the unpaid remainder.
func (d OpenDocument) Outstanding() decimal.Decimal {
	return d.Amount.Sub(d.Paid)
}

// Buckets holds amounts per aging band.
type Buckets struct {
	Current decimal.Decimal `json:"current"`
	Days30  decimal.Decimal `json:"days_30"`
	Days60  decimal.Decimal `json:"days_60"`
	Days90  decimal.Decimal `json:"days_90"`
	Over120 decimal.Decimal `json:"over_120"`
}

func (b *Buckets) add(bucket Bucket, amount decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		b.Current = b.Current.Add(amount)
	case Bucket30:
		b.Days30 = b.Days30.Add(amount)
	case Bucket60:
		b.Days60 = b.Days60.Add(amount)
	case Bucket90:
		b.Days90 = b.Days90.Add(amount)
	default:
		b.Over120 = b.Over120.Add(amount)
	}
}

func (b *Buckets) merge(other Buckets) {
	b.Current = b.Current.Add(other.Current)
	b.Days30 = b.Days30.Add(other.Days30)
	b.Days60 = b.Days60.Add(other.Days60)
	b.Days90 = b.Days90.Add(other.Days90)
	b.Over120 = b.Over120.Add(other.Over120)
}

// Total sums every band.
func (b Buckets) Total() decimal.Decimal {
	return b.Current.Add(b.Days30).Add(b.Days60).Add(b.Days90).Add(b.Over120)
}

// shareOf expresses each band as a percentage of total, two decimals.
func (b Buckets) shareOf(total decimal.Decimal) Buckets {
	if total.IsZero() {
		return Buckets{}
	}
	hundred := decimal.NewFromInt(100)
	pct := func(v decimal.Decimal) decimal.Decimal {
		return v.Mul(hundred).DivRound(total, 2)
	}
	return Buckets{
		Current: pct(b.Current),
		Days30:  pct(b.Days30),
		Days60:  pct(b.Days60),
		Days90:  pct(b.Days90),
		Over120: pct(b.Over120),
	}
}

// CounterpartyAging aggregates one customer or supplier.
type CounterpartyAging struct {
	CounterpartyID uuid.UUID       `json:"counterparty_id"`
	Name           string          `json:"name"`
	Documents      int             `json:"documents"`
	Buckets        Buckets         `json:"buckets"`
	Total          decimal.Decimal `json:"total"`
}

// Report is the aging summary as of a date.
type Report struct {
	Kind           Kind                `json:"kind"`
	AsOf           time.Time           `json:"as_of"`
	Counterparties []CounterpartyAging `json:"counterparties"`
	Totals         Buckets             `json:"totals"`
	Total          decimal.Decimal     `json:"total"`
	Percentages    Buckets             `json:"percentages"`
}

// Build buckets every document with an unpaid remainder, accumulates per
// counterparty and then sums the report totals.
func Build(kind Kind, asOf time.Time, docs []OpenDocument) Report {
	report := Report{Kind: kind, AsOf: asOf}
	index := map[uuid.UUID]int{}
	for _, doc := range docs {
		outstanding := doc.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		pos, ok := index[doc.CounterpartyID]
		if !ok {
			report.Counterparties = append(report.Counterparties, CounterpartyAging{
				CounterpartyID: doc.CounterpartyID,
				Name:           doc.CounterpartyName,
			})
			pos = len(report.Counterparties) - 1
			index[doc.CounterpartyID] = pos
		}
		cp := &report.Counterparties[pos]
		cp.Documents++
		cp.Buckets.add(BucketFor(DaysOutstanding(asOf, doc.DocumentDate)), outstanding)
	}

	sort.SliceStable(report.Counterparties, func(i, j int) bool {
		return report.Counterparties[i].Name < report.Counterparties[j].Name
	})
	for i := range report.Counterparties {
		cp := &report.Counterparties[i]
		cp.Total = cp.Buckets.Total()
		report.Totals.merge(cp.Buckets)
	}
	report.Total = report.Totals.Total()
	report.Percentages = report.Totals.shareOf(report.Total)
	return report
}
