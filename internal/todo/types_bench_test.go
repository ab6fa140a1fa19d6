package todo

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func createTestTasks(n int) []Task {
	created := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			ID:          i + 1,
			Description: fmt.Sprintf("Task %d", i+1),
			Category:    []string{"Work", "Study", "Personal", "Health", "Other"}[i%5],
			Priority:    Priorities()[i%3],
			Completed:   i%4 == 0,
			CreatedAt:   created.Add(time.Duration(i) * time.Minute),
		}
	}
	return tasks
}

// BenchmarkLoad benchmarks data file loading, schema validation and parsing.
func BenchmarkLoad(b *testing.B) {
	f := NewFile()
	f.Tasks = createTestTasks(100)
	f.NextID = 101
	path := filepath.Join(b.TempDir(), "tasks.json")
	if err := f.Save(path); err != nil {
		b.Fatalf("Save failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(path, ValidationOptions{}); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

// BenchmarkSave benchmarks atomic saving of 100 tasks.
func BenchmarkSave(b *testing.B) {
	f := NewFile()
	f.Tasks = createTestTasks(100)
	f.NextID = 101
	path := filepath.Join(b.TempDir(), "tasks.json")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := f.Save(path); err != nil {
			b.Fatalf("Save failed: %v", err)
		}
	}
}
