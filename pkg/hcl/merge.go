package hcl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/leowmjw/go-scoreplot/pkg/render"
)

// MergeHCLFiles combines multiple HCL files into a single HCL file body,
// the way Terraform loads every .tf file of a directory.
func MergeHCLFiles(filePaths []string) (*hcl.File, error) {
	parser := hclparse.NewParser()
	var mergedContent bytes.Buffer

	for _, path := range filePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}

		mergedContent.Write(content)
		mergedContent.WriteString("\n")
	}

	file, diags := parser.ParseHCL(mergedContent.Bytes(), "merged.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse merged HCL content: %s", diags.Error())
	}

	return file, nil
}

// ParseJobFile parses the plot jobs of one file
func ParseJobFile(path string) ([]render.Job, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	jobs, err := ParseJobs(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// ParseJobDirectory parses all .hcl files in a directory, in name order, as
// one set of plot jobs. Plot names must be unique across files.
func ParseJobDirectory(dirPath string) ([]render.Job, error) {
	var hclFiles []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && IsHCLFile(info.Name()) {
			hclFiles = append(hclFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no HCL files found in directory %s", dirPath)
	}
	sort.Strings(hclFiles)

	mergedFile, err := MergeHCLFiles(hclFiles)
	if err != nil {
		return nil, err
	}

	return parseJobsFromFile(mergedFile)
}

// LoadJobs reads plot jobs from a directory of HCL files, an HCL file, or a
// JSON file holding one job or an array of jobs.
func LoadJobs(path string) ([]render.Job, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return ParseJobDirectory(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if IsHCLFile(path) || DetectContent(content) == ContentTypeHCL {
		jobs, err := ParseJobs(string(content))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return jobs, nil
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var jobs []render.Job
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return jobs, nil
	}
	var job render.Job
	if err := json.Unmarshal(trimmed, &job); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []render.Job{job}, nil
}
