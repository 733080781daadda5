package scope_test

import (
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/scopestore/internal/app/scope"
)

func ExampleStore_Run() {
	store := scope.New(scope.Config{Logger: slog.New(slog.DiscardHandler)})

	store.Set("request_id", "outer")

	_ = store.Run(func() error {
		fmt.Println(store.Has("request_id"))
		store.Set("request_id", "inner")
		fmt.Println(store.Get("request_id"))

		return nil
	})

	fmt.Println(store.Get("request_id"))
	// Output:
	// false
	// inner
	// outer
}

func ExampleStore_Merge() {
	store := scope.New(scope.Config{Logger: slog.New(slog.DiscardHandler)})

	store.Set("a", 1)
	store.Set("b", 2)
	store.Merge(map[string]any{"b": 3, "c": 4}, false)

	fmt.Println(store.Keys(), store.Get("b"))
	// Output: [a b c] 2
}

func ExampleScheduler() {
	store := scope.New(scope.Config{Logger: slog.New(slog.DiscardHandler)})
	sched := store.NewScheduler()

	for _, job := range []string{"a", "b"} {
		_, _ = sched.Spawn(func() {
			_ = store.Run(func() error {
				store.Set("job", job)
				fmt.Println("start", job)

				if err := sched.Yield(); err != nil {
					return err
				}

				fmt.Println("resume", store.Get("job"))

				return nil
			})
		})
	}

	_ = sched.Run()
	// Output:
	// start a
	// start b
	// resume a
	// resume b
}
