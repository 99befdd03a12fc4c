package series

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ref points at one loadable series inside a patient/study/series
// directory tree.
type Ref struct {
	Patient string
	Study   string
	Series  string
	Path    string
}

// String returns the "patient > study > series" form used in listings.
func (r Ref) String() string {
	return fmt.Sprintf("%s > %s > %s", r.Patient, r.Study, r.Series)
}

// Discover walks a patient/study/series tree and returns every series
// directory holding at least one DICOM file, in stable alphabetical order.
func Discover(root string) ([]Ref, error) {
	patients, err := sortedDirs(root)
	if err != nil {
		return nil, fmt.Errorf("read root directory: %w", err)
	}

	var refs []Ref
	for _, patient := range patients {
		studies, err := sortedDirs(filepath.Join(root, patient))
		if err != nil {
			return nil, err
		}
		for _, study := range studies {
			seriesDirs, err := sortedDirs(filepath.Join(root, patient, study))
			if err != nil {
				return nil, err
			}
			for _, series := range seriesDirs {
				path := filepath.Join(root, patient, study, series)
				ok, err := hasDICOMFiles(path)
				if err != nil {
					return nil, err
				}
				if ok {
					refs = append(refs, Ref{Patient: patient, Study: study, Series: series, Path: path})
				}
			}
		}
	}
	return refs, nil
}

func sortedDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func hasDICOMFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".dcm") {
			return true, nil
		}
	}
	return false, nil
}
