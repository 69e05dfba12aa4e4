package main

import (
	"go/parser"
	"go/token"
	"testing"
)

const auditFixture = `package services

import (
	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
)

type goodService struct {
	repos  repos.Set
	ledger domainagg.ProgressLedger
}

func (s *goodService) Create() {
	s.ledger.ApplyRecord(nil, domainagg.ApplyRecordInput{})
	s.repos.Records.GetByID(nil, nil, nil)
	s.repos.Notifications.MarkRead(nil, nil, nil, nil)
}

type badService struct {
	repos    repos.Set
	profiles repos.UserProfileRepo
}

func (s *badService) Create() {
	s.repos.Records.Create(nil, nil)
	s.profiles.Update(nil, nil)
}
`

func TestCollectMethodStats(t *testing.T) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "fixture.go", auditFixture, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fields := map[string]structFields{}
	collectStructFields(f, fields)
	var methods []methodStats
	collectMethodStats(fset, f, "fixture.go", fields, &methods)
	report := buildReport(methods)

	if report.ServiceMethods != 2 {
		t.Fatalf("methods: want=2 got=%d", report.ServiceMethods)
	}
	if len(report.Residual) != 1 || report.Residual[0].StructName != "badService" {
		t.Fatalf("residual: %+v", report.Residual)
	}
	if got := report.Residual[0].OwnedReposWritten; len(got) != 2 || got[0] != "Records" || got[1] != "UserProfileRepo" {
		t.Fatalf("owned repos written: %v", got)
	}
	if report.AggregateWriteCallsites != 1 || report.AggregateAdoption[0].StructName != "goodService" {
		t.Fatalf("aggregate adoption: %+v", report.AggregateAdoption)
	}
}

func TestAuditServicesHaveNoResidualWrites(t *testing.T) {
	report, err := audit("..")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	for _, m := range report.Residual {
		t.Errorf("%s:%d %s.%s writes %v directly", m.File, m.Line, m.StructName, m.Method, m.OwnedReposWritten)
	}
	if report.AggregateWriteCallsites == 0 {
		t.Fatal("expected services to write through aggregates")
	}
}
