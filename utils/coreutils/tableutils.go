package coreutils

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jfrog/jfrog-client-go/utils/errorutils"
)

// PrintTable prints a slice of rows in a table.
// The parameter rows MUST be a slice of flat structs, otherwise the method panics.
// Only string fields tagged with 'col-name' are printed; the column name is the
// tag value. A 'col-max-width' tag limits the column width, breaking longer
// cell content into multiple lines.
//
// Example:
//
// type Measurement struct {
//     Name        string `col-name:"Name"`
//     Description string `col-name:"Description" col-max-width:"40"`
// }
//
// rows := []Measurement{{Name: "page.load", Description: "Time to first paint"}}
// err := coreutils.PrintTable(rows, "Measurements", "No measurements were found")
//
// Yields:
//
// Measurements
// ┌───────────┬─────────────────────┐
// │ NAME      │ DESCRIPTION         │
// ├───────────┼─────────────────────┤
// │ page.load │ Time to first paint │
// └───────────┴─────────────────────┘
//
// If rows is empty, emptyTableMessage is printed in a frame instead.
func PrintTable(rows interface{}, title string, emptyTableMessage string) error {
	return WriteTable(os.Stdout, rows, title, emptyTableMessage)
}

// WriteTable renders the same table as PrintTable into the provided writer.
func WriteTable(w io.Writer, rows interface{}, title string, emptyTableMessage string) error {
	if title != "" {
		fmt.Fprintln(w, title)
	}

	rowsSliceValue := reflect.ValueOf(rows)
	if rowsSliceValue.Len() == 0 && emptyTableMessage != "" {
		writeMessage(w, emptyTableMessage)
		return nil
	}

	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(w)
	if IsTerminal() {
		tableWriter.SetStyle(table.StyleLight)
	}
	tableWriter.Style().Options.SeparateRows = true

	rowType := reflect.TypeOf(rows).Elem()
	var columnsNames []interface{}
	var fieldsIndexes []int
	var columnConfigs []table.ColumnConfig
	for i := 0; i < rowType.NumField(); i++ {
		field := rowType.Field(i)
		columnName, columnNameExist := field.Tag.Lookup("col-name")
		if !columnNameExist {
			continue
		}
		columnsNames = append(columnsNames, columnName)
		fieldsIndexes = append(fieldsIndexes, i)
		if columnMaxWidth, ok := field.Tag.Lookup("col-max-width"); ok {
			columnMaxWidthValue, err := strconv.Atoi(columnMaxWidth)
			if err != nil {
				return errorutils.CheckError(err)
			}
			columnConfigs = append(columnConfigs, table.ColumnConfig{Name: columnName, WidthMax: columnMaxWidthValue})
		}
	}
	tableWriter.AppendHeader(columnsNames)
	tableWriter.SetColumnConfigs(columnConfigs)

	for i := 0; i < rowsSliceValue.Len(); i++ {
		var rowValues []interface{}
		currRowValue := rowsSliceValue.Index(i)
		for _, fieldIndex := range fieldsIndexes {
			rowValues = append(rowValues, currRowValue.Field(fieldIndex).String())
		}
		tableWriter.AppendRow(rowValues)
	}

	tableWriter.Render()
	return nil
}

// writeMessage prints message in a frame (which is actually a table with a single cell).
// For example:
// ┌─────────────────────────────────────────┐
// │ An example of a message in a nice frame │
// └─────────────────────────────────────────┘
func writeMessage(w io.Writer, message string) {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(w)
	if IsTerminal() {
		tableWriter.SetStyle(table.StyleLight)
	}
	tableWriter.AppendRow(table.Row{message})
	tableWriter.Render()
}
