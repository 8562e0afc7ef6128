package numgen

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// BenchmarkGenerate 单次取值性能
func BenchmarkGenerate(b *testing.B) {
	b.Run("安全随机源", func(b *testing.B) {
		src := NewSecureRandomGenerator()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Generate(src, 1, 1000); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("单元素缓存", func(b *testing.B) {
		src := NewSecureRandomGenerator(1)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Generate(src, 1, 1000); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("并发", func(b *testing.B) {
		src := NewSecureRandomGenerator()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				if _, err := Generate(src, -1_000_000, 1_000_000); err != nil {
					b.Error(err)
				}
			}
		})
	})
}

// BenchmarkHistoryInsert 历史记录写入性能 (每次写入都会完整持久化)
func BenchmarkHistoryInsert(b *testing.B) {
	ctx := context.Background()

	bunt, err := NewBuntStorage(filepath.Join(b.TempDir(), "history.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer bunt.Close()

	backends := []struct {
		name    string
		storage Storage
	}{
		{"内存", NewMemoryStorage()},
		{"buntdb", bunt},
		{"熔断器+内存", NewBreakerStorage(NewMemoryStorage(), nil, nil)},
	}

	for _, backend := range backends {
		b.Run(backend.name, func(b *testing.B) {
			store := NewHistoryStore(backend.storage, nil, NewSilentLogger())
			ids := NewIDGenerator(1)
			now := time.Now()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				entry := HistoryEntry{ID: ids.Next(), Number: i%100 + 1, Min: 1, Max: 100, Timestamp: now}
				if err := store.Insert(ctx, entry); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkHistoryLoad 满容量历史的解码性能
func BenchmarkHistoryLoad(b *testing.B) {
	entries := make([]HistoryEntry, MaxHistoryEntries)
	for i := range entries {
		entries[i] = testEntry(i + 1)
	}
	data, err := encodeHistory(entries)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := decodeHistory(data, MaxHistoryEntries); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRoll 零间隔动画的完整生成流程
func BenchmarkRoll(b *testing.B) {
	ctx := context.Background()
	roller := NewRollerWithSource(NewSecureRandomGenerator(), &RollerConfig{Ticks: 1, TickInterval: time.Microsecond}, nil)
	app := NewApp(roller, NewHistoryStore(NewMemoryStorage(), nil, nil), nil, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := app.Generate(ctx, 1, 100, nil); err != nil {
			b.Fatal(err)
		}
	}
}
