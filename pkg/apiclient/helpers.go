package apiclient

import "fmt"

// getResource performs a GET request to the given path and decodes the
// envelope data into a value of type T.
//
// Example:
//
//	info, err := getResource[DeviceInfo](c, "/api/v1/device")
func getResource[T any](c *Client, path string) (*T, error) {
	var result T
	if err := c.get(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// resourcePath builds a resource path with fmt.Sprintf.
func resourcePath(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
