package awsintegrations

import "testing"

func TestIsHealthyReport(t *testing.T) {
	cases := map[string]bool{
		"Success: HTTP Status Code 200, OK": true,
		"Failure: HTTP Status Code 503":     false,
		"":                                  false,
		"Succ":                              false,
	}
	for report, want := range cases {
		if got := isHealthyReport(report); got != want {
			t.Errorf("isHealthyReport(%q) = %v, want %v", report, got, want)
		}
	}
}
