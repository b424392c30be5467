// cmd/tools/form-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"mobile-forms/internal/common/validation"
	"mobile-forms/internal/profileform"
)

func main() {
	locale := flag.String("locale", "ru", "Message locale (ru, en)")
	asJSON := flag.Bool("json", false, "Print the result as JSON")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: form-check [-locale ru|en] [-json] <profile.json | ->")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	values, err := readProfile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	rep := check(values, profileform.NewCatalog(*locale))
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
	} else {
		printReport(os.Stdout, rep)
	}

	if !rep.Result.Valid {
		os.Exit(1)
	}
}

type report struct {
	Phone    string                       `json:"phone,omitempty"`
	Passport string                       `json:"passport,omitempty"`
	Result   *validation.ValidationResult `json:"result"`
}

func readProfile(path string) (profileform.FormValues, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return profileform.FormValues{}, err
		}
		defer f.Close()
		r = f
	}

	var values profileform.FormValues
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&values); err != nil {
		return profileform.FormValues{}, fmt.Errorf("decode profile: %w", err)
	}
	return values, nil
}

// check renders the masked phone and passport and runs the rules.
func check(values profileform.FormValues, catalog *profileform.Catalog) report {
	rep := report{
		Result: profileform.NewValidator(catalog).Validate(values),
	}
	if p := values.PhoneValue(); p != "" {
		rep.Phone, _ = profileform.PhoneOnChange(p)
	}
	if values.PassportNumber != "" {
		rep.Passport = profileform.FormatPassport(values.PassportNumber)
	}
	return rep
}

func printReport(w io.Writer, rep report) {
	if rep.Phone != "" {
		fmt.Fprintf(w, "phone:    %s\n", rep.Phone)
	}
	if rep.Passport != "" {
		fmt.Fprintf(w, "passport: %s\n", rep.Passport)
	}
	if rep.Result.Valid {
		fmt.Fprintln(w, "OK")
		return
	}
	for _, e := range rep.Result.Errors {
		fmt.Fprintf(w, "%-16s %s\n", e.Field, e.Message)
	}
}
