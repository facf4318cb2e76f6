package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"swesmith/internal/adapter"
	"swesmith/internal/buggen"
	"swesmith/internal/errs"
	"swesmith/internal/logging"
)

var (
	genOwner, genRepo, genCommit string
	genMethod                    string
	genMaxBugs                   int
	genOut                       string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "walk a profile's source tree and emit candidate bug patches (C2 + C4)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p, err := mustProfile(reg, genOwner, genRepo, genCommit)
		if err != nil {
			return errs.New(errs.KindConfig, "generate", err)
		}

		builder, c, err := buildEnvironment()
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := cmd.Context()
		mirrorDir, mirrorCommit, err := builder.EnsureMirror(ctx, p)
		if err != nil {
			return err
		}

		la, err := adapter.New(p.Language)
		if err != nil {
			return errs.New(errs.KindConfig, "generate", err)
		}

		var lm *buggen.LMGenerator
		if genMethod == "llm-modify" || genMethod == "llm-rewrite" || genMethod == "all" {
			client, err := buildLLMClient()
			if err != nil {
				return err
			}
			lm = buggen.NewLMGenerator(client)
		}
		proc := buggen.NewProceduralGenerator()

		files, err := walkSourceFiles(mirrorDir, p.SourceGlobs(), p.ExcludeGlobs())
		if err != nil {
			return errs.New(errs.KindHarnessCrash, "generate", err)
		}

		outDir := filepath.Join(genOut, p.Repo)
		log := logging.Get(logging.CategoryBuggen)
		log.Info("generating bugs for %s/%s@%s over %d source files (mirror commit %s)", p.Owner, p.Repo, p.Commit, len(files), mirrorCommit)

		total := 0
		for _, relPath := range files {
			src, err := os.ReadFile(filepath.Join(mirrorDir, relPath))
			if err != nil {
				return errs.New(errs.KindHarnessCrash, "generate", err)
			}
			entities, err := la.EntitiesOf(relPath, src)
			if err != nil {
				log.Warn("skipping %s: %v", relPath, err)
				continue
			}
			if len(entities) == 0 {
				continue
			}

			var candidates []buggen.Candidate
			if genMethod == "procedural" || genMethod == "all" {
				candidates = append(candidates, proc.Generate(ctx, string(src), entities, genMaxBugs)...)
			}
			if lm != nil {
				for _, e := range entities {
					if genMethod == "llm-modify" || genMethod == "all" {
						if cand, err := lm.GenerateModify(ctx, string(src), e); err != nil {
							log.Warn("llm-modify failed for %s:%s: %v", relPath, e.Name, err)
						} else if cand != nil {
							candidates = append(candidates, *cand)
						}
					}
					if genMethod == "llm-rewrite" || genMethod == "all" {
						if cand, err := lm.GenerateRewrite(ctx, string(src), e); err != nil {
							log.Warn("llm-rewrite failed for %s:%s: %v", relPath, e.Name, err)
						} else if cand != nil {
							candidates = append(candidates, *cand)
						}
					}
				}
			}

			for i := range candidates {
				if err := writeCandidate(outDir, relPath, &candidates[i]); err != nil {
					return err
				}
				total++
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d candidate(s) to %s\n", total, outDir)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genOwner, "owner", "", "profile owner (required)")
	generateCmd.Flags().StringVar(&genRepo, "repo", "", "profile repo (required)")
	generateCmd.Flags().StringVar(&genCommit, "commit", "", "profile commit (required)")
	generateCmd.Flags().StringVar(&genMethod, "method", "procedural", "bug-gen-method: procedural|llm-modify|llm-rewrite|all")
	generateCmd.Flags().IntVar(&genMaxBugs, "max-bugs", 1, "max procedural bugs per source file")
	generateCmd.Flags().StringVar(&genOut, "out", "logs/bug_gen", "output root for bug_gen artifacts")
	generateCmd.MarkFlagRequired("owner")
	generateCmd.MarkFlagRequired("repo")
	generateCmd.MarkFlagRequired("commit")
}

// writeCandidate writes c's diff and metadata sidecar under
// <outDir>/<relPath>/<entity name>/, the layout internal/collector.Collect
// expects.
func writeCandidate(outDir, relPath string, c *buggen.Candidate) error {
	dir := filepath.Join(outDir, relPath, c.Entity.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.New(errs.KindHarnessCrash, "generate.writeCandidate", err)
	}
	if err := os.WriteFile(filepath.Join(dir, c.DiffFilename()), []byte(c.DiffText), 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "generate.writeCandidate", err)
	}
	b, err := c.MetadataJSON()
	if err != nil {
		return errs.New(errs.KindSchema, "generate.writeCandidate", err)
	}
	if err := os.WriteFile(filepath.Join(dir, c.MetadataFilename()), b, 0o644); err != nil {
		return errs.New(errs.KindHarnessCrash, "generate.writeCandidate", err)
	}
	return nil
}

// walkSourceFiles returns root-relative paths under root matching any
// sourceGlobs pattern and no excludeGlobs pattern. Patterns are the
// "**/*.ext"-style globs Profile.SourceGlobs/ExcludeGlobs return; matching
// is done against the file's base name (extension) and its full relative
// path (substring, for directory-shaped excludes like "**/vendor/**"),
// which covers every pattern this pipeline's profiles actually declare
// without pulling in a third globbing dependency the example pack never
// uses for this purpose.
func walkSourceFiles(root string, sourceGlobs, excludeGlobs []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchesAnyGlob(rel, sourceGlobs) {
			return nil
		}
		if matchesAnyGlob(rel, excludeGlobs) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

func matchesAnyGlob(relPath string, globs []string) bool {
	for _, g := range globs {
		if globMatches(relPath, g) {
			return true
		}
	}
	return false
}

// globMatches implements just enough of "**/*.ext" / "**/dirname/**" glob
// semantics to serve Profile's default patterns: a leading "**/" matches any
// (possibly empty) directory prefix, and the remainder is matched with
// filepath.Match against the path's base name, falling back to a substring
// check for directory-shaped patterns ending in "/**".
func globMatches(relPath, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, "**/")
	if strings.HasSuffix(pattern, "/**") {
		dir := strings.TrimSuffix(pattern, "/**")
		return strings.Contains(relPath, "/"+dir+"/") || strings.HasPrefix(relPath, dir+"/")
	}
	matched, _ := filepath.Match(pattern, filepath.Base(relPath))
	if matched {
		return true
	}
	matched, _ = filepath.Match(pattern, relPath)
	return matched
}
