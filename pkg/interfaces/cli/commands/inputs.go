package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/csv"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/document"
)

// Scenario directory file names
const (
	scenarioIngredientsFile = "ingredients.csv"
	scenarioJobsFile        = "jobs.csv"
	scenarioLinesFile       = "lines.csv"
)

// InputFiles names the files a command reads. Document files (.json, .yaml, .yml)
// carry jobs with their lines, so Lines is only used with a CSV jobs file.
type InputFiles struct {
	ScenarioDir string
	Ingredients string
	Jobs        string
	Lines       string
}

// resolve fills the file paths from the scenario directory, when one is given, and
// checks that every named file exists
func (f InputFiles) resolve(needJobs bool) (InputFiles, error) {
	resolved := f
	if f.ScenarioDir != "" {
		if resolved.Ingredients == "" {
			resolved.Ingredients = filepath.Join(f.ScenarioDir, scenarioIngredientsFile)
		}
		if needJobs && resolved.Jobs == "" {
			resolved.Jobs = filepath.Join(f.ScenarioDir, scenarioJobsFile)
			lines := filepath.Join(f.ScenarioDir, scenarioLinesFile)
			if resolved.Lines == "" && fileExists(lines) {
				resolved.Lines = lines
			}
		}
	}

	if resolved.Ingredients == "" {
		return resolved, fmt.Errorf("must specify either --scenario directory or --ingredients file")
	}
	if needJobs && resolved.Jobs == "" {
		return resolved, fmt.Errorf("must specify either --scenario directory or --jobs file")
	}

	for name, path := range map[string]string{
		"Ingredients": resolved.Ingredients,
		"Jobs":        resolved.Jobs,
		"Lines":       resolved.Lines,
	} {
		if path != "" && !fileExists(path) {
			return resolved, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return resolved, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadIngredients(path string) ([]entities.IngredientRecord, error) {
	if document.IsDocumentPath(path) {
		return document.LoadIngredients(path)
	}
	return csv.NewLoader().LoadIngredients(path)
}

func loadJobs(jobsPath, linesPath string) ([]entities.ManufacturingJobParams, error) {
	if document.IsDocumentPath(jobsPath) {
		if linesPath != "" {
			return nil, fmt.Errorf("--lines is only used with a CSV jobs file")
		}
		return document.LoadJobs(jobsPath)
	}
	return csv.NewLoader().LoadJobs(jobsPath, linesPath)
}
