package iocli

//go:generate moq -out io_mock.go . IO

// IO абстрагирует терминал для CLI
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadInput печатает prompt и читает строку без перевода строки.
	// В конце ввода возвращает io.EOF.
	ReadInput(prompt string) (string, error)
	Write(p []byte) (n int, err error)
	// IsInteractive сообщает, подключен ли ввод к терминалу
	IsInteractive() bool
}
