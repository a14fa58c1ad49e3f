// Package shipping resolves delivery cost by wilaya and delivery type.
package shipping

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"waseet-api/internal/entity"
	"waseet-api/pkg/textfold"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_rates.yaml
var defaultRates []byte

var (
	ErrUnknownWilaya       = errors.New("no delivery rate for wilaya")
	ErrUnknownDeliveryType = errors.New("unknown delivery type")
)

type Rate struct {
	Code int    `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
	Home int64  `yaml:"home" json:"home"`
	Desk int64  `yaml:"desk" json:"desk"`
}

type file struct {
	Wilayas []Rate `yaml:"wilayas"`
}

type Table struct {
	rates  []Rate
	byName map[string]Rate
}

func NewTable(rates []Rate) *Table {
	t := &Table{byName: make(map[string]Rate, len(rates))}
	for _, r := range rates {
		t.rates = append(t.rates, r)
		t.byName[textfold.Fold(r.Name)] = r
	}
	sort.Slice(t.rates, func(i, j int) bool { return t.rates[i].Code < t.rates[j].Code })

	return t
}

func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("shipping rates: %w", err)
	}
	if len(f.Wilayas) == 0 {
		return nil, errors.New("shipping rates: empty table")
	}

	return NewTable(f.Wilayas), nil
}

// Load reads the rate table at path, or the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Parse(defaultRates)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shipping rates: %w", err)
	}

	return Parse(data)
}

// Cost returns the delivery cost to wilaya, matched by name regardless of
// case and accents.
func (t *Table) Cost(wilaya string, delivery entity.DeliveryType) (decimal.Decimal, error) {
	r, ok := t.byName[textfold.Fold(wilaya)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownWilaya, wilaya)
	}

	switch delivery {
	case entity.HomeDelivery:
		return decimal.NewFromInt(r.Home), nil
	case entity.DeskDelivery:
		return decimal.NewFromInt(r.Desk), nil
	}

	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownDeliveryType, delivery)
}

func (t *Table) Rates() []Rate {
	out := make([]Rate, len(t.rates))
	copy(out, t.rates)

	return out
}
