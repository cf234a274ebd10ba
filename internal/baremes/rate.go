package baremes

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Rate is the tagged shape of a contribution rate.
type Rate interface {
	isRate()
}

type Scalar float64

// HeadcountConditional applies Below when headcount < Threshold.
type HeadcountConditional struct {
	Below     float64
	Above     float64
	Threshold int
}

type RegionConditional struct {
	Metropole     float64
	AlsaceMoselle float64
}

type CsgSplit struct {
	Deductible    float64
	NonDeductible float64
}

// SmicConditional applies Reduced when gross <= SmicMultiple x monthly SMIC.
// A zero SmicMultiple means the rule's default threshold.
type SmicConditional struct {
	Reduced      float64
	Full         float64
	SmicMultiple float64
}

func (Scalar) isRate()               {}
func (HeadcountConditional) isRate() {}
func (RegionConditional) isRate()    {}
func (CsgSplit) isRate()             {}
func (SmicConditional) isRate()      {}

func (c CsgSplit) Total() float64 {
	return c.Deductible + c.NonDeductible
}

// RateSpec decodes a JSON rate (number, null or keyed object) into a Rate.
// A nil Rate means no rate is declared.
type RateSpec struct {
	Rate Rate
}

func (r RateSpec) IsNull() bool {
	return r.Rate == nil
}

func (r *RateSpec) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		r.Rate = nil
		return nil
	}
	if b[0] != '{' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		r.Rate = Scalar(f)
		return nil
	}

	var obj map[string]*float64
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("rate object: %w", err)
	}
	rate, err := rateFromObject(obj)
	if err != nil {
		return err
	}
	r.Rate = rate
	return nil
}

func (r RateSpec) MarshalJSON() ([]byte, error) {
	switch v := r.Rate.(type) {
	case nil:
		return []byte("null"), nil
	case Scalar:
		return json.Marshal(float64(v))
	case HeadcountConditional:
		return json.Marshal(map[string]float64{
			"taux_moins_" + strconv.Itoa(v.Threshold):        v.Below,
			"taux_" + strconv.Itoa(v.Threshold) + "_et_plus": v.Above,
		})
	case RegionConditional:
		return json.Marshal(map[string]float64{"metropole": v.Metropole, "alsace_moselle": v.AlsaceMoselle})
	case CsgSplit:
		return json.Marshal(map[string]float64{"deductible": v.Deductible, "non_deductible": v.NonDeductible})
	case SmicConditional:
		m := map[string]float64{"reduit": v.Reduced, "plein": v.Full}
		if v.SmicMultiple > 0 {
			m["seuil_smic"] = v.SmicMultiple
		}
		return json.Marshal(m)
	}
	return nil, fmt.Errorf("rate: unsupported variant %T", r.Rate)
}

func rateFromObject(obj map[string]*float64) (Rate, error) {
	get := func(k string) float64 {
		if v := obj[k]; v != nil {
			return *v
		}
		return 0
	}
	_, hasDed := obj["deductible"]
	_, hasNonDed := obj["non_deductible"]
	if hasDed || hasNonDed {
		return CsgSplit{Deductible: get("deductible"), NonDeductible: get("non_deductible")}, nil
	}
	_, hasMetro := obj["metropole"]
	_, hasAM := obj["alsace_moselle"]
	if hasMetro || hasAM {
		return RegionConditional{Metropole: get("metropole"), AlsaceMoselle: get("alsace_moselle")}, nil
	}
	_, hasReduced := obj["reduit"]
	_, hasFull := obj["plein"]
	if hasReduced || hasFull {
		return SmicConditional{Reduced: get("reduit"), Full: get("plein"), SmicMultiple: get("seuil_smic")}, nil
	}

	// taux_moins_<N> / taux_<N>_et_plus
	for k := range obj {
		if !strings.HasPrefix(k, "taux_moins_") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(k, "taux_moins_"))
		if err != nil {
			return nil, fmt.Errorf("rate: bad headcount key %q", k)
		}
		above := "taux_" + strconv.Itoa(n) + "_et_plus"
		if _, ok := obj[above]; !ok {
			return nil, fmt.Errorf("rate: %q without %q", k, above)
		}
		return HeadcountConditional{Below: get(k), Above: get(above), Threshold: n}, nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("rate: unknown shape with keys %v", keys)
}
