package translate

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// spinnerInterval is how often the spinner advances.
const spinnerInterval = 100 * time.Millisecond

// Spinner returns a Liveness that draws a progressbar spinner on w. Each
// indicator runs in its own goroutine; stop closes it and waits for the
// goroutine to return.
func Spinner(w io.Writer) Liveness {
	return func(title string) func() {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetDescription(title),
			progressbar.OptionClearOnFinish(),
		)

		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(spinnerInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					bar.Finish()
					return
				case <-ticker.C:
					bar.Add(1)
				}
			}
		}()

		var once sync.Once
		return func() {
			once.Do(func() {
				close(done)
				wg.Wait()
			})
		}
	}
}
