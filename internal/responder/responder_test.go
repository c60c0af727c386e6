package responder

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKeywordReply(t *testing.T) {
	t.Parallel()

	k := NewKeyword(nil, "")

	tests := []struct {
		name string
		in   string
		want string // substring of the expected reply
	}{
		{"greeting", "Halo!", "Halo juga"},
		{"greeting uppercase", "HAI", "Halo juga"},
		{"help", "bisa bantu saya?", "Apa yang ingin Anda ketahui"},
		{"how to", "bagaimana cara pengajuan?", "Pengajuan Properti"},
		{"review status", "status review saya", "peninjauan awal"},
		{"survey", "apa arti status survey", "lolos seleksi awal"},
		{"rejected", "kenapa ditolak", "Lihat Detail"},
		{"duration", "berapa lama prosesnya", "7-14 hari kerja"},
		{"criteria", "apa kriteria propertinya", "lokasi strategis"},
		{"human contact", "saya mau kontak admin", "info@alfamidi.co.id"},
		{"thanks", "oke terima kasih", "Sama-sama"},
		{"fallback", "xyzzy", "belum mengerti"},
		{"empty input falls back", "", "belum mengerti"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := k.Reply(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Reply(%q): %v", tt.in, err)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("Reply(%q) = %q, want it to contain %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeywordRuleOrderWins(t *testing.T) {
	t.Parallel()

	// "berapa lama prosesnya sampai direview" contains both "berapa lama"
	// and "review"; the earlier rule must win.
	k := NewKeyword([]Rule{
		{Keywords: []string{"berapa lama"}, Reply: "duration"},
		{Keywords: []string{"review"}, Reply: "review"},
	}, "fallback")

	got, err := k.Reply(context.Background(), "berapa lama sampai direview?")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "duration" {
		t.Fatalf("Reply = %q, want the earlier rule to win", got)
	}
}

func TestKeywordSubstringCollisions(t *testing.T) {
	t.Parallel()

	// Matching is plain substring containment over the ordered default table:
	// "bicara" contains "cara", and a question phrased with "bagaimana" hits
	// the how-to rule even when a later rule's keyword also appears.
	k := NewKeyword(nil, "")

	for _, in := range []string{
		"status review saya bagaimana ya",
		"saya mau bicara dengan admin",
	} {
		got, err := k.Reply(context.Background(), in)
		if err != nil {
			t.Fatalf("Reply(%q): %v", in, err)
		}
		if !strings.Contains(got, "Pengajuan Properti") {
			t.Fatalf("Reply(%q) = %q, want the earlier how-to rule to win", in, got)
		}
	}
}

func TestKeywordCustomFallback(t *testing.T) {
	t.Parallel()

	k := NewKeyword([]Rule{{Keywords: []string{"yes"}, Reply: "ya"}}, "custom fallback")

	got, err := k.Reply(context.Background(), "nothing matches")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "custom fallback" {
		t.Fatalf("Reply = %q, want the custom fallback", got)
	}
}

func TestGreeting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hour int
		want string
	}{
		{"early morning", 5, "Selamat Pagi"},
		{"late morning", 10, "Selamat Pagi"},
		{"noon", 11, "Selamat Siang"},
		{"afternoon", 15, "Selamat Sore"},
		{"evening", 18, "Selamat Malam"},
		{"night", 23, "Selamat Malam"},
		{"small hours", 3, "Selamat Malam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			now := time.Date(2026, time.March, 10, tt.hour, 0, 0, 0, time.UTC)
			msgs := Greeting("")(now)

			if len(msgs) != 2 {
				t.Fatalf("seed length = %d, want 2", len(msgs))
			}
			if msgs[0] != tt.want+"!" {
				t.Fatalf("salutation = %q, want %q", msgs[0], tt.want+"!")
			}
			if !strings.Contains(msgs[1], "MidiLand") {
				t.Fatalf("intro = %q, want the assistant intro", msgs[1])
			}
		})
	}
}

func TestGreetingPersonalization(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	msgs := Greeting("Rina")(now)

	if msgs[0] != "Selamat Pagi, Rina!" {
		t.Fatalf("salutation = %q, want the personalized greeting", msgs[0])
	}
}
