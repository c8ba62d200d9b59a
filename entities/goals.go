package entities

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NumericText holds a number exactly as the user typed it. Goals and height
// are kept as text so that an unparsable value survives a save/export cycle
// untouched; readers decide what a bad value means.
type NumericText string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumericText(num.String())
	return nil
}

// IsSet reports whether any text was entered.
func (n NumericText) IsSet() bool {
	return strings.TrimSpace(string(n)) != ""
}

// Float parses the text. ok is false for empty or non-numeric text.
func (n NumericText) Float() (v float64, ok bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Goals are the user's daily targets.
type Goals struct {
	Weight   NumericText `json:"weight"`
	Calories NumericText `json:"calories"`
	Protein  NumericText `json:"protein"`
	Carbs    NumericText `json:"carbs"`
	Fat      NumericText `json:"fat"`
	Water    NumericText `json:"water"`
}

func DefaultGoals() Goals {
	return Goals{
		Calories: "2000",
		Protein:  "150",
		Carbs:    "200",
		Fat:      "65",
		Water:    "2000",
	}
}
