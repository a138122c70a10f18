package main

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// report prints v as YAML and turns an error response into errAcquirer
func (a *app) report(v any, isError bool) error {
	if err := a.print(v); err != nil {
		return err
	}
	if isError {
		return errAcquirer
	}
	return nil
}

func (a *app) print(v any) error {
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("printing result: %w", err)
	}
	return enc.Close()
}
