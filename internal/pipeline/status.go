package pipeline

import "fmt"

// StatusLine：给终端用户的一行结果说明
func StatusLine(path string, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Heatmap saved as '%s'. Open in a web browser to view.", path)
	case IsGeoUnavailable(err):
		return "Failed to load geographical data. Exiting."
	default:
		return fmt.Sprintf("Failed to generate heatmap: %v", err)
	}
}
