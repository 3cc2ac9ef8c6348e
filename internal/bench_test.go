package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func BenchmarkRegisterPatternFile(b *testing.B) {
	dir := b.TempDir()
	fp := filepath.Join(dir, "p.txt")
	var body strings.Builder
	for i := 0; i < 2000; i++ {
		body.WriteString("plain:i:hello\n")
	}
	body.WriteString("re:^user=\\w+$\n")
	_ = os.WriteFile(fp, []byte(body.String()), 0644)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var s PatternSet
		if _, err := s.RegisterFile(fp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	dir := b.TempDir()
	line := strings.Repeat("lorem ipsum dolor sit amet ", 4) + "\n"
	for i := 0; i < 500; i++ {
		body := strings.Repeat(line, 50) + fmt.Sprintf("token=%d\n", i)
		writeFile(b, filepath.Join(dir, fmt.Sprintf("d%d", i%10), fmt.Sprintf("f%d.txt", i)), body)
	}

	for _, threads := range []int{0, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			f := NewFinder(Options{Threads: threads, NoGlobal: true})
			if err := f.Configure([]string{dir}); err != nil {
				b.Fatal(err)
			}
			if _, err := f.RegisterPattern(`token=\d+`); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := f.Search(context.Background()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
