package calendar

// Page — одна страница элементов (посты в ленте, выбираемые даты и т.п.).
type Page[T any] struct {
	Items    []T // элементы текущей страницы
	Page     int // номер страницы (с 1)
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int
}

const defaultPageSize = 20

// Paginate возвращает срез items для указанной страницы и метаданные.
// page нумеруется с 1; при некорректных значениях используются дефолты.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}

// PageFrom собирает страницу из элементов, уже срезанных хранилищем
// (limit/offset в SQL): метаданные считаются по общему количеству.
func PageFrom[T any](items []T, page, pageSize, total int) Page[T] {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasNext:  page*pageSize < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}
