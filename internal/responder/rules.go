package responder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFallback directs unmatched questions to the human support channel.
const DefaultFallback = "Maaf, saya belum mengerti pertanyaan itu. Anda bisa menghubungi tim support kami di info@alfamidi.co.id."

// DefaultRules returns the built-in reply table for the property-submission
// portal. Order is significant: earlier rules win.
func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords: []string{"halo", "hai"},
			Reply:    "Halo juga! Ada yang bisa saya bantu terkait pengajuan properti Anda di MidiLand?",
		},
		{
			Keywords: []string{"bantu", "help"},
			Reply:    "Tentu! Apa yang ingin Anda ketahui? (Contoh: 'cara pengajuan', 'status review', 'kriteria properti')",
		},
		{
			Keywords: []string{"cara", "gimana", "bagaimana"},
			Reply:    "Anda bisa mendaftarkan properti baru dengan klik menu 'Pengajuan Properti' di bagian atas, lalu isi formulir dengan lengkap.",
		},
		{
			Keywords: []string{"review"},
			Reply:    "Status 'Sedang Direview' berarti tim kami sedang melakukan peninjauan awal terhadap data dan kelengkapan dokumen Anda.",
		},
		{
			Keywords: []string{"survey"},
			Reply:    "Status 'Survey' berarti properti Anda lolos seleksi awal. Tim kami akan segera menjadwalkan kunjungan ke lokasi.",
		},
		{
			Keywords: []string{"tolak"},
			Reply:    "Pengajuan bisa 'Ditolak' karena beberapa faktor, seperti lokasi, ukuran, atau legalitas. Silakan klik 'Lihat Detail' di kartu properti untuk info lebih lanjut.",
		},
		{
			Keywords: []string{"berapa lama", "waktu"},
			Reply:    "Proses review awal biasanya memakan waktu 7-14 hari kerja. Jika lolos ke tahap 'Survey', tim kami akan menghubungi Anda.",
		},
		{
			Keywords: []string{"kriteria"},
			Reply:    "Kami mencari lokasi strategis dengan luas minimum, akses jalan, dan potensi pasar yang baik. Semua pengajuan akan dinilai oleh tim survei kami.",
		},
		{
			Keywords: []string{"admin", "manusia", "kontak"},
			Reply:    "Tentu. Untuk bantuan lebih lanjut, Anda dapat menghubungi tim support kami melalui email di info@alfamidi.co.id pada jam operasional.",
		},
		{
			Keywords: []string{"makasih", "terima kasih"},
			Reply:    "Sama-sama! Senang bisa membantu.",
		},
	}
}

// RulesFile is the on-disk reply table format.
type RulesFile struct {
	Fallback string `yaml:"fallback"`
	Rules    []Rule `yaml:"rules"`
}

// LoadRulesFile reads a YAML reply table. Operators use this to adjust
// canned replies without a redeploy.
func LoadRulesFile(path string) (RulesFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RulesFile{}, fmt.Errorf("read rules file: %w", err)
	}

	var f RulesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return RulesFile{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if len(f.Rules) == 0 {
		return RulesFile{}, fmt.Errorf("rules file %s: no rules", path)
	}
	for i, r := range f.Rules {
		if len(r.Keywords) == 0 {
			return RulesFile{}, fmt.Errorf("rules file %s: rule %d has no keywords", path, i)
		}
		if r.Reply == "" {
			return RulesFile{}, fmt.Errorf("rules file %s: rule %d has no reply", path, i)
		}
	}
	return f, nil
}
