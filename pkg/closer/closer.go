// Package closer останавливает ресурсы сервиса в обратном порядке их открытия.
package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultForcedTimeout = 2 * time.Second

// Func — функция остановки ресурса.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// Closer хранит функции остановки и вызывает их один раз, последней добавленной первой.
type Closer struct {
	mu            sync.Mutex
	resources     []resource
	once          sync.Once
	err           error
	forcedTimeout time.Duration
}

// NewCloser создаёт Closer. forcedTimeout ограничивает принудительную остановку ресурсов,
// до которых не дошла очередь к моменту отмены контекста Close. Ноль — 2 секунды.
func NewCloser(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует ресурс. Имя попадает в текст ошибки остановки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, resource{name: name, close: f})
}

// Len — число зарегистрированных ресурсов.
func (c *Closer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.resources)
}

// Close останавливает ресурсы по очереди (LIFO). Если ctx отменён раньше, чем очередь
// закончилась, оставшиеся ресурсы останавливаются параллельно с собственным таймаутом.
// Повторные вызовы возвращают результат первого.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		resources := append([]resource(nil), c.resources...)
		c.mu.Unlock()

		pending, failures := closeInOrder(ctx, resources)
		if len(pending) == 0 {
			if len(failures) > 0 {
				c.err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(failures, "\n"))
			}
			return
		}

		failures = append(failures, c.forceClose(pending)...)
		c.err = fmt.Errorf("shutdown interrupted after %d/%d resources: %w\n%s",
			len(resources)-len(pending), len(resources), ctx.Err(), strings.Join(failures, "\n"))
	})

	return c.err
}

// closeInOrder возвращает ресурсы, до которых не дошла очередь, и ошибки остановленных.
func closeInOrder(ctx context.Context, resources []resource) ([]resource, []string) {
	var failures []string
	for i := len(resources) - 1; i >= 0; i-- {
		res := resources[i]
		done := make(chan error, 1)
		go func() { done <- res.close(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				failures = append(failures, fmt.Sprintf("[!] %s: %v", res.name, err))
			}
		case <-ctx.Done():
			return resources[:i+1], failures
		}
	}

	return nil, failures
}

func (c *Closer) forceClose(resources []resource) []string {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, res := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := res.close(ctx); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("[FORCED] %s: %v", res.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return failures
}
