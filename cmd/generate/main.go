// Command generate renders a billing notice offline from a template and an
// extracted bill record, without the database or object storage.
//
//	generate -template templates/notice.odt -data bill.json -out notice.odt
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"billdoc/internal/docgen"
	"billdoc/internal/domain"
	"billdoc/internal/odt"
	"billdoc/internal/service"
	"billdoc/internal/templates"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("generate: ")

	templatePath := flag.String("template", "", "path to the .odt template")
	dataPath := flag.String("data", "-", "path to the bill record JSON, or - for stdin")
	outPath := flag.String("out", "", "output path (default: <template>_<yyyy-mm>.odt in the current directory)")
	flag.Parse()

	if *templatePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*templatePath, *dataPath, *outPath); err != nil {
		log.Print(err)
		if errors.Is(err, odt.ErrStructural) || errors.Is(err, domain.ErrTemplateInvalid) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(templatePath, dataPath, outPath string) error {
	data, err := readBill(dataPath)
	if err != nil {
		return err
	}

	name := filepath.Base(templatePath)
	tpl, err := templates.NewFileSource(filepath.Dir(templatePath)).Load(context.Background(), name)
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}

	res, err := docgen.NewGenerator().Generate(tpl, data)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Printf("warning: %s", w)
	}
	if len(res.Unresolved) > 0 {
		log.Printf("warning: template placeholders left unfilled: %v", res.Unresolved)
	}

	if outPath == "" {
		outPath = service.OutputFileName(name, data.Period())
	}
	if err := os.WriteFile(outPath, res.Document, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	charged, _ := res.Replacements.Get(docgen.TokenChargedAmount)
	words, _ := res.Replacements.Get(docgen.TokenChargedAmountKor)
	fmt.Printf("%s: %s (%s)\n", outPath, charged, words)
	return nil
}

func readBill(path string) (domain.ExtractedBillData, error) {
	var data domain.ExtractedBillData

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return data, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return data, fmt.Errorf("%w: %v", domain.ErrInvalidBillData, err)
	}
	return data, nil
}
