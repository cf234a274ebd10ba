package baremes

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"payroll-engine/internal/model/payerr"
)

const (
	FileContributions = "cotisations.json"
	FileSmic          = "smic.json"
	FileCeilings      = "plafonds.json"
	FileOvertime      = "heuresupp.json"
	FileWithholding   = "pas.json"
	FileBonuses       = "primes.json"
	FileConventions   = "conventions_collectives.json"
)

var requiredFiles = map[string]bool{
	FileContributions: true,
	FileSmic:          true,
	FileCeilings:      true,
	FileOvertime:      true,
	FileWithholding:   false,
	FileBonuses:       false,
	FileConventions:   false,
}

// Registry reads rule tables from a directory. Raw file contents are cached
// per registry; every Load decodes a fresh Tables value.
type Registry struct {
	dir   string
	cache sync.Map
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) Dir() string {
	return r.dir
}

// Reset drops cached file contents so the next Load rereads the directory.
func (r *Registry) Reset() {
	r.cache.Range(func(k, _ any) bool {
		r.cache.Delete(k)
		return true
	})
}

func (r *Registry) Load() (*Tables, error) {
	files := make(map[string][]byte, len(requiredFiles))

	var toRead []string
	for name := range requiredFiles {
		if b, ok := r.cache.Load(name); ok {
			if b != nil {
				files[name] = b.([]byte)
			}
		} else {
			toRead = append(toRead, name)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for _, name := range toRead {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			b, err := os.ReadFile(filepath.Join(r.dir, name))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, fs.ErrNotExist):
				if requiredFiles[name] {
					if firstErr == nil {
						firstErr = payerr.New(payerr.KindConfigMissing, "rate table not found").WithField(name)
					}
					return
				}
				r.cache.Store(name, nil)
			case err != nil:
				if firstErr == nil {
					firstErr = payerr.Wrap(err, payerr.KindConfigMissing, "cannot read rate table").WithField(name)
				}
			default:
				r.cache.Store(name, b)
				files[name] = b
			}
		}(name)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return Decode(files)
}

type contributionsDoc struct {
	Contributions []Contribution `json:"cotisations"`
}

type smicDoc struct {
	Smic *Smic `json:"smic"`
}

type ceilingsDoc struct {
	PSS *Ceilings `json:"pss"`
}

type bonusesDoc struct {
	Bonuses []BonusDefinition `json:"primes"`
}

type conventionsDoc struct {
	Conventions []Convention `json:"conventions"`
}

// Decode builds Tables from file contents keyed by file name.
func Decode(files map[string][]byte) (*Tables, error) {
	for name, required := range requiredFiles {
		if _, ok := files[name]; required && !ok {
			return nil, payerr.New(payerr.KindConfigMissing, "rate table not found").WithField(name)
		}
	}

	t := &Tables{}

	var contribs contributionsDoc
	if err := decodeFile(files, FileContributions, &contribs); err != nil {
		return nil, err
	}
	if len(contribs.Contributions) == 0 {
		return nil, payerr.New(payerr.KindConfigInvalid, "no contribution rule").WithField(FileContributions)
	}
	t.Contributions = contribs.Contributions

	var smic smicDoc
	if err := decodeFile(files, FileSmic, &smic); err != nil {
		return nil, err
	}
	if smic.Smic == nil || smic.Smic.Hourly <= 0 {
		return nil, payerr.New(payerr.KindConfigInvalid, "smic.horaire must be positive").WithField(FileSmic)
	}
	t.Smic = *smic.Smic

	var ceilings ceilingsDoc
	if err := decodeFile(files, FileCeilings, &ceilings); err != nil {
		return nil, err
	}
	if ceilings.PSS == nil || ceilings.PSS.Monthly <= 0 {
		return nil, payerr.New(payerr.KindConfigInvalid, "pss.mensuel must be positive").WithField(FileCeilings)
	}
	t.Ceilings = *ceilings.PSS

	if err := decodeFile(files, FileOvertime, &t.Overtime); err != nil {
		return nil, err
	}
	if t.Overtime.Majorations.HS25 <= 0 || t.Overtime.Majorations.HS50 <= 0 {
		return nil, payerr.New(payerr.KindConfigInvalid, "majorations.hs25 and hs50 must be positive").WithField(FileOvertime)
	}

	if err := decodeFile(files, FileWithholding, &t.Withholding); err != nil {
		return nil, err
	}

	var bonuses bonusesDoc
	if err := decodeFile(files, FileBonuses, &bonuses); err != nil {
		return nil, err
	}
	t.Bonuses = bonuses.Bonuses

	var conventions conventionsDoc
	if err := decodeFile(files, FileConventions, &conventions); err != nil {
		return nil, err
	}
	t.Conventions = conventions.Conventions

	return t, nil
}

// decodeFile leaves v untouched when the file is absent.
func decodeFile(files map[string][]byte, name string, v any) error {
	b, ok := files[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return payerr.Wrap(err, payerr.KindConfigInvalid, "malformed rate table").WithField(name)
	}
	return nil
}
