package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/constants"
	"github.com/agentstation/etlrecon/pkg/errors"
)

func writeMarkdown(path string, s *compare.ProjectSummary) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := renderMarkdown(f, s); err != nil {
		_ = f.Close()
		return errors.WrapResource("render", "report", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func renderMarkdown(w io.Writer, s *compare.ProjectSummary) error {
	totals := s.Totals()
	doc := md.NewMarkdown(w).
		H1(fmt.Sprintf("Comparação S3 vs ETL: %s", s.Project)).
		PlainTextf("Gerado em %s", s.GeneratedAt.Format(constants.TimeFormatHuman)).
		LF().
		H2("Resumo").
		BulletList(
			fmt.Sprintf("Arquivos ETL: %d", totals.Files),
			fmt.Sprintf("Sem divergências: %d", totals.OK),
			fmt.Sprintf("Com divergências: %d", totals.Mismatches),
			fmt.Sprintf("Sem arquivo S3: %d", totals.NoS3File),
			fmt.Sprintf("Erros de leitura: %d", totals.Errors),
			fmt.Sprintf("Chaves ambíguas: %d", totals.Ambiguous),
		)

	rows := make([][]string, 0, len(s.Files))
	for i := range s.Files {
		file := &s.Files[i]
		sum := file.Summary()
		rows = append(rows, []string{
			md.Code(file.Key),
			string(file.Status),
			strconv.Itoa(file.RowCountETL),
			strconv.Itoa(file.RowCountS3),
			strconv.Itoa(sum.Differences()),
		})
	}
	doc.H2("Arquivos").
		Table(md.TableSet{
			Header: []string{"Arquivo", "Status", "Linhas ETL", "Linhas S3", "Linhas divergentes"},
			Rows:   rows,
		})

	if missing := s.Missing(); len(missing) > 0 {
		items := make([]string, len(missing))
		for i, m := range missing {
			items[i] = md.Code(m.Key)
		}
		doc.H2("Arquivos ETL sem S3").BulletList(items...)
	}

	if len(s.UnclaimedS3) > 0 {
		doc.H2("Arquivos S3 sem ETL").BulletList(s.UnclaimedS3...)
	}

	return doc.Build()
}
