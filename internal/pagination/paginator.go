// Package pagination разбивает упорядоченную выборку на страницы фиксированного размера.
package pagination

import "strconv"

// Page описывает одну страницу выборки и соседние страницы.
type Page struct {
	Number     int
	NumPages   int
	PerPage    int
	TotalItems int64
}

// New строит страницу по сырому параметру запроса ?page=.
// Нечисловое или пустое значение даёт первую страницу, номер вне диапазона
// (меньше 1 или больше числа страниц) даёт последнюю.
func New(raw string, perPage int, total int64) Page {
	if perPage <= 0 {
		perPage = 1
	}
	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1, number > numPages:
		number = numPages
	}

	return Page{Number: number, NumPages: numPages, PerPage: perPage, TotalItems: total}
}

// Offset возвращает смещение первой записи страницы.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}
