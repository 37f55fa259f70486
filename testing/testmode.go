// Package testing is blank-imported by tests of main packages. It switches the
// process into test mode before any main() runs.
package testing

import "os"

func init() {
	if os.Getenv("SUBMISSION_TEST_MODE") == "" {
		_ = os.Setenv("SUBMISSION_TEST_MODE", "1")
	}
}
