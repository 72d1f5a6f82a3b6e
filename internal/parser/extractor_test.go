package parser

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/credit-audit/constants"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

const smartCreditSample = `SmartCredit 3-Bureau Report
Name: John Q Consumer
Current Address: 123 Main Street
Springfield, IL 62704
SSN: XXX-XX-6789
Date of Birth: 04/12/1985

Equifax Credit Score: 712
Experian Credit Score: 705
TransUnion Credit Score: 699

INQUIRIES
Capital One      01/15/2023
Chase Bank       11/02/2019

PUBLIC RECORDS
Tax Lien: Filed 03/2016 County of Sangamon
Judgment: None
`

func TestDetectBureau(t *testing.T) {
	tests := []struct {
		name string
		text string
		want constants.Bureau
	}{
		{"single mention", "Your Experian report", constants.Experian},
		{"most mentions wins", "TransUnion ... Equifax ... transunion", constants.TransUnion},
		{"none", "a credit report", constants.UnknownBureau},
		{"tie goes to scheduling order", "experian equifax", constants.Equifax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBureau(tt.text); got != tt.want {
				t.Errorf("DetectBureau() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"Powered by Smart Credit":        FormatSmartCredit,
		"IDENTITYIQ member report":       FormatIdentityIQ,
		"myFICO 3B report":               FormatMyFICO,
		"www.AnnualCreditReport.com":     FormatAnnualCreditReport,
		"Equifax personal credit report": FormatUnknown,
	}
	for text, want := range tests {
		if got := DetectFormat(text); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestExtractAggregatorReport(t *testing.T) {
	e := NewExtractor(nil)
	report := e.Extract(entity.ExtractedText{Text: smartCreditSample, Method: entity.MethodDirect}, "")

	if report.Format != FormatSmartCredit {
		t.Errorf("Format = %q", report.Format)
	}
	want := map[string]int{"equifax": 712, "experian": 705, "transunion": 699}
	for b, s := range want {
		if report.Scores[b] != s {
			t.Errorf("Scores[%s] = %d, want %d", b, report.Scores[b], s)
		}
	}

	pi := report.PersonalInfo
	if pi.Name == nil || *pi.Name != "John Q Consumer" {
		t.Errorf("Name = %v", deref(pi.Name))
	}
	if pi.Address == nil || *pi.Address != "123 Main Street, Springfield, IL 62704" {
		t.Errorf("Address = %v", deref(pi.Address))
	}
	if pi.SSNLast4 == nil || *pi.SSNLast4 != "6789" {
		t.Errorf("SSNLast4 = %v", deref(pi.SSNLast4))
	}
	if pi.DateOfBirth == nil || *pi.DateOfBirth != "04/12/1985" {
		t.Errorf("DateOfBirth = %v", deref(pi.DateOfBirth))
	}

	if len(report.Inquiries) != 2 {
		t.Fatalf("Inquiries = %+v", report.Inquiries)
	}
	if report.Inquiries[0].Creditor != "Capital One" || report.Inquiries[0].Date != "01/15/2023" || report.Inquiries[0].Type != entity.InquiryHard {
		t.Errorf("Inquiries[0] = %+v", report.Inquiries[0])
	}
	if report.Inquiries[1].Creditor != "Chase Bank" {
		t.Errorf("Inquiries[1] = %+v", report.Inquiries[1])
	}

	if len(report.PublicRecords) != 1 {
		t.Fatalf("PublicRecords = %+v", report.PublicRecords)
	}
	if rec := report.PublicRecords[0]; rec.Type != entity.RecordTaxLien || rec.Status != "active" {
		t.Errorf("PublicRecords[0] = %+v", rec)
	}
	if report.RawText != smartCreditSample {
		t.Error("RawText should carry the source text when under the cap")
	}
}

func TestExtractAbsentFieldsStayEmpty(t *testing.T) {
	report := NewExtractor(nil).Extract(entity.ExtractedText{Text: "nothing useful here"}, "")
	if !report.PersonalInfo.Empty() {
		t.Errorf("PersonalInfo = %+v", report.PersonalInfo)
	}
	if report.Scores != nil || report.Accounts != nil || report.Inquiries != nil || report.PublicRecords != nil {
		t.Errorf("expected empty collections, got %+v", report)
	}
	if report.Sufficient() {
		t.Error("empty report should not be sufficient")
	}
}

func TestExtractScoreRange(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		bureau constants.Bureau
		want   map[string]int
	}{
		{"out of range discarded", "Experian score: 912", constants.Experian, nil},
		{"first in range wins", "Experian score: 999 ... Experian score: 640", constants.Experian, map[string]int{"experian": 640}},
		{"generic fallback credited to bureau", "Equifax report\n733 Credit Score", constants.Equifax, map[string]int{"equifax": 733}},
		{"generic fallback unknown bureau", "Your score: 655", constants.UnknownBureau, map[string]int{"unknown": 655}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScores(tt.text, tt.bureau, FormatUnknown)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractScores() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ExtractScores()[%s] = %d, want %d", k, got[k], v)
				}
			}
		})
	}
}

func TestExtractBureauHintOverrides(t *testing.T) {
	report := NewExtractor(nil).Extract(entity.ExtractedText{Text: "Experian Experian"}, "TransUnion")
	if report.Bureau != constants.TransUnion {
		t.Errorf("Bureau = %q", report.Bureau)
	}
}

func TestExtractOCRFormatTags(t *testing.T) {
	e := NewExtractor(nil)
	pdf := e.Extract(entity.ExtractedText{Text: "Equifax", Method: entity.MethodOCR, Kind: constants.PDF}, "")
	if pdf.Format != FormatOCR {
		t.Errorf("pdf OCR Format = %q", pdf.Format)
	}
	img := e.Extract(entity.ExtractedText{Text: "Equifax", Method: entity.MethodOCR, Kind: constants.IMAGE}, "")
	if img.Format != FormatImageOCR {
		t.Errorf("image OCR Format = %q", img.Format)
	}
	known := e.Extract(entity.ExtractedText{Text: "IdentityIQ", Method: entity.MethodOCR}, "")
	if known.Format != FormatIdentityIQ {
		t.Errorf("known product should keep its tag, got %q", known.Format)
	}
}

func TestRawTextCapped(t *testing.T) {
	long := strings.Repeat("a", entity.MaxRawTextLen+10)
	report := NewExtractor(nil).Extract(entity.ExtractedText{Text: long}, "")
	if len(report.RawText) != entity.MaxRawTextLen {
		t.Errorf("len(RawText) = %d", len(report.RawText))
	}
}

func TestNameSkipsTableHeader(t *testing.T) {
	text := "Name        Number        Balance\nConsumer: Jane Roe"
	got, ok := findName(text)
	if !ok || got != "Jane Roe" {
		t.Errorf("findName() = %q, %v", got, ok)
	}
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
