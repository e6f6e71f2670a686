package resource

// Status представляет состояние Resource
// Ровно одно состояние активно в каждый момент времени
type Status int

const (
	// StatusLoading - операция выполняется, данные могут быть частичными/устаревшими
	StatusLoading Status = iota
	// StatusSuccess - операция завершилась успешно, данные авторитетны
	StatusSuccess
	// StatusError - операция завершилась ошибкой, message всегда непустой
	StatusError
)

// fallbackMessage используется, когда boundary-слой не передал текст ошибки
const fallbackMessage = "unknown error"

// Resource[T] - трёхсостоянный результат любой асинхронной/граничной операции:
// Loading | Success(data) | Error(message, partial)
// Loading и Error могут нести устаревшие данные для непрерывности UI,
// но никогда не считаются авторитетными. Не предназначен для персистентности.
type Resource[T any] struct {
	status  Status
	data    T
	hasData bool
	message string
}

// Loading создаёт Resource в состоянии загрузки без данных
func Loading[T any]() Resource[T] {
	return Resource[T]{status: StatusLoading}
}

// LoadingWith создаёт Resource в состоянии загрузки с устаревшими данными
func LoadingWith[T any](partial T) Resource[T] {
	return Resource[T]{status: StatusLoading, data: partial, hasData: true}
}

// Success создаёт успешный Resource с авторитетными данными
// Вызывающий обязан не передавать сюда "пустой" ответ там, где данные
// семантически обязательны - такой ответ маппится в Failure("empty response")
func Success[T any](data T) Resource[T] {
	return Resource[T]{status: StatusSuccess, data: data, hasData: true}
}

// Failure создаёт Resource в состоянии ошибки
// Пустое message заменяется на fallback: сообщение ошибки всегда непустое
func Failure[T any](message string) Resource[T] {
	if message == "" {
		message = fallbackMessage
	}
	return Resource[T]{status: StatusError, message: message}
}

// FailureWith создаёт Resource в состоянии ошибки с устаревшими данными
func FailureWith[T any](message string, partial T) Resource[T] {
	r := Failure[T](message)
	r.data = partial
	r.hasData = true
	return r
}

// Status возвращает активное состояние
func (r Resource[T]) Status() Status {
	return r.status
}

// Data возвращает данные и признак их наличия
// Для Loading/Error наличие данных означает лишь устаревший снимок
func (r Resource[T]) Data() (T, bool) {
	return r.data, r.hasData
}

// MustData возвращает данные успешного Resource
// Используется только после проверки IsSuccess
func (r Resource[T]) MustData() T {
	return r.data
}

// Message возвращает человекочитаемое сообщение ошибки
// Текст предназначен для отображения/логов, не для control flow
func (r Resource[T]) Message() string {
	return r.message
}

// IsLoading сообщает, активно ли состояние Loading
func (r Resource[T]) IsLoading() bool {
	return r.status == StatusLoading
}

// IsSuccess сообщает, активно ли состояние Success
func (r Resource[T]) IsSuccess() bool {
	return r.status == StatusSuccess
}

// IsError сообщает, активно ли состояние Error
func (r Resource[T]) IsError() bool {
	return r.status == StatusError
}
