package syncs

import "context"

// Semaphore caps the number of holders. A nil Semaphore never blocks.
type Semaphore chan struct{}

func NewSemaphore(n int) Semaphore {
	if n <= 0 {
		return nil
	}
	return make(chan struct{}, n)
}

func (s Semaphore) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s Semaphore) Release() {
	if s == nil {
		return
	}
	<-s
}

// Held reports the number of current holders.
func (s Semaphore) Held() int {
	return len(s)
}
