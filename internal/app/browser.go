package app

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openBrowser points the user's default browser at the control page. Best
// effort: the gateway works fine if the user navigates there by hand.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
