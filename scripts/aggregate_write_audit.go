// Command aggregate_write_audit reports service methods that write ledger-owned
// tables without going through an aggregate. It exits 1 when any are found.
//
//	go run ./scripts [repo-root]
package main

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type methodStats struct {
	StructName           string   `json:"struct_name"`
	Method               string   `json:"method"`
	File                 string   `json:"file"`
	Line                 int      `json:"line"`
	OwnedRepoWriteCalls  int      `json:"owned_repo_write_calls"`
	OwnedReposWritten    []string `json:"owned_repos_written"`
	AggregateWriteCalls  int      `json:"aggregate_write_calls"`
	AggregateMethodsUsed []string `json:"aggregate_methods_used"`
}

type auditReport struct {
	ServiceMethods          int           `json:"service_methods"`
	OwnedRepoWriteCallsites int           `json:"owned_repo_write_callsites"`
	AggregateWriteCallsites int           `json:"aggregate_write_callsites"`
	Residual                []methodStats `json:"residual"`
	AggregateAdoption       []methodStats `json:"aggregate_adoption"`
}

type structFields struct {
	// repo field name -> repo type, for fields typed repos.XRepo
	Repos map[string]string
	// field names typed repos.Set
	Sets map[string]bool
	// aggregate field name -> aggregate type
	Aggregates map[string]string
}

// ownedRepos are written only inside aggregates; keyed by repos.Set field and
// by repo type.
var ownedRepos = map[string]bool{
	"Records":             true,
	"Profiles":            true,
	"Goals":               true,
	"UserAchievements":    true,
	"ContentProgress":     true,
	"SmokingRecordRepo":   true,
	"UserProfileRepo":     true,
	"GoalRepo":            true,
	"UserAchievementRepo": true,
	"ContentProgressRepo": true,
}

var aggregateTypes = map[string]bool{
	"ProgressLedger":           true,
	"GoalTracker":              true,
	"AchievementEvaluator":     true,
	"ContentProgressAggregate": true,
}

var aggregateWriteMethods = map[string]bool{
	"ApplyRecord":    true,
	"UpdateRecord":   true,
	"DeleteRecord":   true,
	"SetupProfile":   true,
	"CreateGoal":     true,
	"UpdateGoal":     true,
	"UpdateProgress": true,
	"Complete":       true,
	"Pause":          true,
	"Resume":         true,
	"Fail":           true,
	"Delete":         true,
	"MarkNotified":   true,
	"SweepDue":       true,
	"Evaluate":       true,
	"RecordProgress": true,
}

func isWriteMethod(name string) bool {
	for _, prefix := range []string{"Create", "Update", "Upsert", "Delete", "Mark", "Increment", "Set", "Apply", "Lock"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	report, err := audit(root)
	if err != nil {
		exitf("%v", err)
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if len(report.Residual) > 0 {
		os.Exit(1)
	}
}

func audit(root string) (auditReport, error) {
	servicesDir := filepath.Join(root, "internal", "services")
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, servicesDir, func(fi os.FileInfo) bool {
		name := fi.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, 0)
	if err != nil {
		return auditReport{}, fmt.Errorf("parse dir: %w", err)
	}
	pkg, ok := pkgs["services"]
	if !ok {
		return auditReport{}, fmt.Errorf("services package not found in %s", servicesDir)
	}

	fieldsByStruct := map[string]structFields{}
	for _, f := range pkg.Files {
		collectStructFields(f, fieldsByStruct)
	}
	var methods []methodStats
	for filePath, f := range pkg.Files {
		rel, err := filepath.Rel(root, filePath)
		if err != nil {
			rel = filePath
		}
		collectMethodStats(fset, f, rel, fieldsByStruct, &methods)
	}
	return buildReport(methods), nil
}

func collectStructFields(file *ast.File, out map[string]structFields) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			ts, ok := s.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			sf := structFields{Repos: map[string]string{}, Sets: map[string]bool{}, Aggregates: map[string]string{}}
			for _, field := range st.Fields.List {
				if len(field.Names) == 0 {
					continue
				}
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok {
					continue
				}
				pkgIdent, ok := sel.X.(*ast.Ident)
				if !ok {
					continue
				}
				typeName := sel.Sel.Name
				for _, name := range field.Names {
					switch {
					case pkgIdent.Name == "repos" && typeName == "Set":
						sf.Sets[name.Name] = true
					case pkgIdent.Name == "repos" && strings.HasSuffix(typeName, "Repo"):
						sf.Repos[name.Name] = typeName
					case pkgIdent.Name == "domainagg" && aggregateTypes[typeName]:
						sf.Aggregates[name.Name] = typeName
					}
				}
			}
			if len(sf.Repos) > 0 || len(sf.Sets) > 0 || len(sf.Aggregates) > 0 {
				out[ts.Name.Name] = sf
			}
		}
	}
}

func collectMethodStats(fset *token.FileSet, file *ast.File, relFile string, fieldsByStruct map[string]structFields, out *[]methodStats) {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Body == nil || len(fd.Recv.List) == 0 {
			continue
		}
		recvName, recvType := recvInfo(fd.Recv.List[0])
		if recvName == "" {
			continue
		}
		sf, ok := fieldsByStruct[recvType]
		if !ok {
			continue
		}

		ownedCalls, aggCalls := 0, 0
		ownedRepos := map[string]bool{}
		aggMethods := map[string]bool{}
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fnSel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			method := fnSel.Sel.Name
			repo, agg := resolveReceiver(fnSel.X, recvName, sf)
			switch {
			case repo != "" && isOwned(repo) && isWriteMethod(method):
				ownedCalls++
				ownedRepos[repo] = true
			case agg != "" && aggregateWriteMethods[method]:
				aggCalls++
				aggMethods[method] = true
			}
			return true
		})

		*out = append(*out, methodStats{
			StructName:           recvType,
			Method:               fd.Name.Name,
			File:                 filepath.ToSlash(relFile),
			Line:                 fset.Position(fd.Pos()).Line,
			OwnedRepoWriteCalls:  ownedCalls,
			OwnedReposWritten:    sortedKeys(ownedRepos),
			AggregateWriteCalls:  aggCalls,
			AggregateMethodsUsed: sortedKeys(aggMethods),
		})
	}
}

// resolveReceiver matches recv.field and recv.set.Field receivers.
func resolveReceiver(x ast.Expr, recvName string, sf structFields) (repo, agg string) {
	sel, ok := x.(*ast.SelectorExpr)
	if !ok {
		return "", ""
	}
	if base, ok := sel.X.(*ast.Ident); ok && base.Name == recvName {
		if t, ok := sf.Repos[sel.Sel.Name]; ok {
			return t, ""
		}
		if t, ok := sf.Aggregates[sel.Sel.Name]; ok {
			return "", t
		}
		return "", ""
	}
	inner, ok := sel.X.(*ast.SelectorExpr)
	if !ok {
		return "", ""
	}
	if base, ok := inner.X.(*ast.Ident); ok && base.Name == recvName && sf.Sets[inner.Sel.Name] {
		return sel.Sel.Name, ""
	}
	return "", ""
}

func isOwned(repo string) bool { return ownedRepos[repo] }

func buildReport(methods []methodStats) auditReport {
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].File == methods[j].File {
			return methods[i].Line < methods[j].Line
		}
		return methods[i].File < methods[j].File
	})
	report := auditReport{ServiceMethods: len(methods), Residual: []methodStats{}, AggregateAdoption: []methodStats{}}
	for _, m := range methods {
		if m.OwnedRepoWriteCalls > 0 {
			report.OwnedRepoWriteCallsites += m.OwnedRepoWriteCalls
			report.Residual = append(report.Residual, m)
		}
		if m.AggregateWriteCalls > 0 {
			report.AggregateWriteCallsites += m.AggregateWriteCalls
			report.AggregateAdoption = append(report.AggregateAdoption, m)
		}
	}
	return report
}

func recvInfo(field *ast.Field) (string, string) {
	if field == nil || len(field.Names) == 0 {
		return "", ""
	}
	recvName := field.Names[0].Name
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return recvName, id.Name
		}
	case *ast.Ident:
		return recvName, t.Name
	}
	return "", ""
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
