package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/termstore/internal/compiler"
	"github.com/roach88/termstore/internal/schema"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadedAssemblage is one compiled definition and the CUE label it was
// declared under.
type LoadedAssemblage struct {
	Label      string
	Definition schema.Definition
}

// LoadResult contains the results of loading definitions from a directory.
type LoadResult struct {
	Assemblages []LoadedAssemblage
	FileCount   int // Number of CUE files found
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadAssemblages loads and compiles the CUE assemblage definitions in dir.
// Every compiled definition is also checked with compiler.Validate.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadAssemblages(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	// Build value from instance
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{FileCount: len(cueFiles)}

	assemblagesVal := value.LookupPath(cue.ParsePath("assemblage"))
	if !assemblagesVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "no assemblages found in definitions"}}
	}
	iter, err := assemblagesVal.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating assemblages: %v", err)}}
	}

	for iter.Next() {
		label := iter.Label()
		def, compileErr := compiler.CompileAssemblage(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "assemblage."+label))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		invalid := compiler.Validate(def)
		for _, v := range invalid {
			errs = append(errs, &LoadError{
				Code:    v.Code,
				Message: fmt.Sprintf("assemblage.%s.%s: %s", label, v.Field, v.Message),
				Pos:     iter.Value().Pos(),
			})
		}
		if len(invalid) > 0 {
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Assemblages = append(result.Assemblages, LoadedAssemblage{Label: label, Definition: *def})
	}

	// Check if we found anything
	if len(result.Assemblages) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no assemblages found in definitions"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s.%s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeStore       = "E007" // Store open/read/write error

	// Definition compile errors
	ErrCodeIdentity    = "E101" // Invalid or missing assemblage uuid
	ErrCodeDescription = "E102" // Missing description
	ErrCodeColumn      = "E104" // Invalid column
	ErrCodeRestriction = "E107" // Invalid restriction

	// Lookup errors
	ErrCodeInvalidUUID  = "E201" // Argument is not a UUID
	ErrCodeUnknownID    = "E202" // No component has that UUID
	ErrCodeUndescribed  = "E203" // Assemblage has no usage description
	ErrCodeNoLogicGraph = "E204" // Concept has no stated logic graph
	ErrCodeBadGraph     = "E205" // Logic graph YAML rejected
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "uuid":
		return ErrCodeIdentity
	case field == "description":
		return ErrCodeDescription
	case strings.HasPrefix(field, "columns."), strings.HasPrefix(field, "validators."), field == "data", field == "type":
		return ErrCodeColumn
	case strings.HasPrefix(field, "restriction."):
		return ErrCodeRestriction
	default:
		return ErrCodeGeneric
	}
}
