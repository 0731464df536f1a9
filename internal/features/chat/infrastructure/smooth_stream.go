package infrastructure

import (
	"context"
	"regexp"
	"time"
)

// DefaultSmoothingDelay is the pause between two words emitted by SmoothStream.
const DefaultSmoothingDelay = 10 * time.Millisecond

var wordChunk = regexp.MustCompile(`\S+\s+`)

// SmoothStream returns a transform that re-chunks provider output into whole
// words and paces them by delay. Text still buffered when the source ends is
// emitted as a final chunk.
func SmoothStream(delay time.Duration) StreamTransform {
	return func(ctx context.Context, src TokenStream) TokenStream {
		return &smoothStream{ctx: ctx, src: src, delay: delay}
	}
}

type smoothStream struct {
	ctx     context.Context
	src     TokenStream
	delay   time.Duration
	buf     string
	emitted bool
	done    bool
	err     error
}

func (s *smoothStream) Recv() (string, error) {
	for {
		if loc := wordChunk.FindStringIndex(s.buf); loc != nil {
			chunk := s.buf[:loc[1]]
			if err := s.pace(); err != nil {
				return "", err
			}
			s.buf = s.buf[loc[1]:]
			return chunk, nil
		}
		if s.done {
			if s.buf != "" {
				chunk := s.buf
				s.buf = ""
				return chunk, nil
			}
			return "", s.err
		}
		chunk, err := s.src.Recv()
		if err != nil {
			s.done = true
			s.err = err
			continue
		}
		s.buf += chunk
	}
}

// pace waits between consecutive words; the first word is never delayed.
func (s *smoothStream) pace() error {
	if !s.emitted || s.delay <= 0 {
		s.emitted = true
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *smoothStream) Close() error {
	return s.src.Close()
}
