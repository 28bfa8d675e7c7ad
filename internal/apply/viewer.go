package apply

import (
	"sync"

	"github.com/playwright-community/playwright-go"

	"go-rental-agent/internal/browser"
)

// LiveView is one polled frame of an in-flight apply job.
type LiveView struct {
	Active     bool   `json:"active"`
	Screenshot string `json:"screenshot,omitempty"`
	JobID      string `json:"jobId,omitempty"`
}

// Viewer holds the page reference of the apply job currently executing so
// the UI can watch the agent work. It exists only while exactly one job is
// in flight and is cleared unconditionally on every exit path.
type Viewer struct {
	mu    sync.Mutex
	page  playwright.Page
	jobID string
}

func NewViewer() *Viewer {
	return &Viewer{}
}

func (v *Viewer) Set(page playwright.Page, jobID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = page
	v.jobID = jobID
}

func (v *Viewer) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = nil
	v.jobID = ""
}

func (v *Viewer) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page != nil
}

// View captures the current frame. Returns an inactive view when no job is
// running or the page is already gone.
func (v *Viewer) View() LiveView {
	v.mu.Lock()
	page, jobID := v.page, v.jobID
	v.mu.Unlock()

	if page == nil {
		return LiveView{Active: false}
	}
	shot, err := browser.JPEGScreenshot(page)
	if err != nil {
		return LiveView{Active: false}
	}
	return LiveView{Active: true, Screenshot: shot, JobID: jobID}
}
