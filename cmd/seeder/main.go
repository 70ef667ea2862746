// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/tm2map/core"
	"github.com/poiesic/tm2map/source"
	"github.com/xuri/excelize/v2"
)

// Each seed line is id|term|category|synonyms|icd11_tm2_code.
var seedLines = []string{
	"NAM001|Jwara|Ayurveda|Fever; Pyrexia|SM0A",
	"NAM002|Kasa|Ayurveda|Cough|SM12",
	"NAM003|Atisara|Ayurveda|Diarrhoea; Loose stools|SM21",
	"NAM004|Shwasa|Ayurveda|Dyspnoea; Breathlessness|SM13",
	"NAM005|Amlapitta|Ayurveda|Hyperacidity; Acid dyspepsia|SM24",
	"NAM006|Pandu|Ayurveda|Anaemia; Pallor|",
	"NAM007|Prameha|Ayurveda|Polyuria; Urinary disorders|SM51",
	"NAM008|Shiroroga|Ayurveda|Headache; Diseases of the head|SM61",
	"NAM009|Vatavyadhi|Ayurveda|Neuromuscular disorders|SM70",
	"NAM010|Arsha|Ayurveda|Haemorrhoids; Piles|",
	"NAM011|Kamala|Ayurveda|Jaundice|SM26",
	"NAM012|Grahani|Ayurveda|Malabsorption; Sprue|SM22",
	"NAM013|Sandhivata|Ayurveda|Osteoarthritis; Joint pain|SM72",
	"NAM014|Nidranasha|Ayurveda|Insomnia; Sleeplessness|",
	"NAM015|Kushtha|Ayurveda|Skin disease|SM81",
	"SID001|Suram|Siddha|Fever|SM0A",
	"SID002|Irumal|Siddha|Cough|SM12",
	"SID003|Kazhichal|Siddha|Diarrhoea|",
	"UNA001|Humma|Unani|Fever|SM0A",
	"UNA002|Sual|Unani|Cough|SM12",
	"UNA003|Ishal|Unani|Diarrhoea|SM21",
	"UNA004|Waja-ul-Mafasil|Unani|Arthritis; Joint pain|",
}

var curatedPartial = []core.CuratedEntry{
	{Code: "NAM001", Label: "Jwara", Synonyms: []string{"Fever", "Pyrexia"}, TargetCodes: []string{"SM0A"}},
	{Code: "NAM002", Label: "Kasa", Synonyms: []string{"Cough"}, TargetCodes: []string{"SM12", "SM13"}},
	{Code: "NAM013", Label: "Sandhivata", Synonyms: []string{"Osteoarthritis"}, TargetCodes: []string{"SM72"}},
	{Code: "NAM016", Label: "Jwaratisara", Synonyms: []string{"Fever with diarrhoea"}, TargetCodes: []string{}},
}

var curatedExact = []core.CuratedEntry{
	{Code: "NAM001", Label: "Jwara", Synonyms: []string{"Fever"}, TargetCodes: []string{"SM0A"}},
}

var (
	outDir       = flag.String("out", ".", "directory to write the sample dataset into")
	seedFileName = flag.String("seed", "", "file of id|term|category|synonyms|code lines to use instead of the built-in rows")
	writeXLSX    = flag.Bool("xlsx", true, "also write the term table as an Excel workbook")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// parseRecords turns seed lines into term records, skipping blank lines.
func parseRecords(lines iter.Seq[string]) ([]core.TermRecord, error) {
	var records []core.TermRecord
	n := 0
	for line := range lines {
		n++
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != 5 {
			return nil, fmt.Errorf("seed line %d: expected 5 fields, got %d", n, len(fields))
		}
		records = append(records, core.TermRecord{
			ID:         fields[0],
			Term:       fields[1],
			Category:   fields[2],
			Synonyms:   fields[3],
			TargetCode: fields[4],
		})
	}
	return records, nil
}

func recordRow(r core.TermRecord) []string {
	return []string{r.ID, r.Term, r.Category, r.Synonyms, r.TargetCode}
}

func writeCSV(path string, records []core.TermRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(source.Columns()); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(recordRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeWorkbook(path string, records []core.TermRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, 0, len(source.Columns()))
	for _, col := range source.Columns() {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		cells := make([]any, 0, 5)
		for _, v := range recordRow(r) {
			cells = append(cells, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeCuratedIndex(path string) error {
	data, err := json.MarshalIndent(core.CuratedIndex{
		Exact:   curatedExact,
		Partial: curatedPartial,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func main() {
	flag.Parse()

	// Determine source of seed data
	var lines iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		var err error
		lines, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		lines = linesFromSlice(seedLines)
	}

	records, err := parseRecords(lines)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		panic(err)
	}

	csvPath := filepath.Join(*outDir, source.DefaultTermTableFile)
	if err := writeCSV(csvPath, records); err != nil {
		panic(err)
	}
	slog.Info("wrote term table", "path", csvPath, "rows", len(records))

	if *writeXLSX {
		xlsxPath := strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".xlsx"
		if err := writeWorkbook(xlsxPath, records); err != nil {
			panic(err)
		}
		slog.Info("wrote term workbook", "path", xlsxPath, "rows", len(records))
	}

	curatedPath := filepath.Join(*outDir, source.DefaultCuratedIndexFile)
	if err := writeCuratedIndex(curatedPath); err != nil {
		panic(err)
	}
	slog.Info("wrote curated match index", "path", curatedPath, "partial", len(curatedPartial))
}
