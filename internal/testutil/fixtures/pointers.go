// Package fixtures provides test data builders and helpers.
package fixtures

// IntPtr returns a pointer to the given int.
func IntPtr(i int) *int {
	return &i
}
