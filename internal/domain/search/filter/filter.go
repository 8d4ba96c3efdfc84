package filter

import "fmt"

// Filter is a set of optional constraints on the chunk corpus. An absent
// field means no constraint. Filtering is applied by the content store
// before scoring; the search core never re-filters.
type Filter struct {
	dateRange *DateRange
	fileTypes []string
	pageRange *PageRange
	tags      []string
	folders   []string
	fileNames []string
}

// DateRange bounds document upload time, inclusive, unix millis.
type DateRange struct {
	Start int64
	End   int64
}

// PageRange bounds chunk page numbers, inclusive.
type PageRange struct {
	First int
	Last  int
}

// Option configures a Filter.
type Option func(*Filter) error

// WithDateRange constrains documents to an upload-time window.
func WithDateRange(start, end int64) Option {
	return func(f *Filter) error {
		if start > end {
			return fmt.Errorf("date range start %d after end %d", start, end)
		}
		f.dateRange = &DateRange{Start: start, End: end}
		return nil
	}
}

// WithFileTypes constrains documents to the given file types.
func WithFileTypes(types ...string) Option {
	return func(f *Filter) error {
		f.fileTypes = append([]string(nil), types...)
		return nil
	}
}

// WithPageRange constrains chunks to an inclusive page window.
func WithPageRange(first, last int) Option {
	return func(f *Filter) error {
		if first < 1 {
			return fmt.Errorf("page range must start at 1 or later, got %d", first)
		}
		if first > last {
			return fmt.Errorf("page range first %d after last %d", first, last)
		}
		f.pageRange = &PageRange{First: first, Last: last}
		return nil
	}
}

// WithTags requires documents to carry at least one of the given tags.
func WithTags(tags ...string) Option {
	return func(f *Filter) error {
		f.tags = append([]string(nil), tags...)
		return nil
	}
}

// WithFolders constrains documents to the given folder paths.
func WithFolders(folders ...string) Option {
	return func(f *Filter) error {
		f.folders = append([]string(nil), folders...)
		return nil
	}
}

// WithFileNames constrains documents to the given file names.
func WithFileNames(names ...string) Option {
	return func(f *Filter) error {
		f.fileNames = append([]string(nil), names...)
		return nil
	}
}

// New validates and creates a Filter.
func New(opts ...Option) (Filter, error) {
	var f Filter
	for _, opt := range opts {
		if err := opt(&f); err != nil {
			return Filter{}, err
		}
	}
	return f, nil
}

// ForceFileName returns a copy of the filter with the file-name constraint
// replaced by exactly the given name. Used by single-document mode, which
// overrides any user-supplied file-name constraint.
func (f Filter) ForceFileName(name string) Filter {
	f.fileNames = []string{name}
	return f
}

// DateRange returns the upload-time constraint, nil if absent.
func (f Filter) DateRange() *DateRange { return f.dateRange }

// FileTypes returns the allowed file types, empty if unconstrained.
func (f Filter) FileTypes() []string { return f.fileTypes }

// PageRange returns the page constraint, nil if absent.
func (f Filter) PageRange() *PageRange { return f.pageRange }

// Tags returns the required tags, empty if unconstrained.
func (f Filter) Tags() []string { return f.tags }

// Folders returns the allowed folder paths, empty if unconstrained.
func (f Filter) Folders() []string { return f.folders }

// FileNames returns the allowed file names, empty if unconstrained.
func (f Filter) FileNames() []string { return f.fileNames }

// IsEmpty reports whether the filter has no constraints.
func (f Filter) IsEmpty() bool {
	return f.dateRange == nil && f.pageRange == nil &&
		len(f.fileTypes) == 0 && len(f.tags) == 0 &&
		len(f.folders) == 0 && len(f.fileNames) == 0
}

// AllowsPage reports whether a page number satisfies the page constraint.
func (f Filter) AllowsPage(page int) bool {
	if f.pageRange == nil {
		return true
	}
	return page >= f.pageRange.First && page <= f.pageRange.Last
}
