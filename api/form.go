package api

import (
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
)

// formPage is the data bound into formTemplate.
type formPage struct {
	Catalog string
	Tariffs []TariffDTO
	Input   contract.Input
	Error   string
}

// Selected reports whether price is the tariff the user picked last time.
func (p formPage) Selected(price int64) bool {
	return p.Input.Tariff == strconv.FormatInt(price, 10)
}

// formMessage is the Russian text shown above the form for err.
// The JSON API keeps messageFor.
func formMessage(err error) string {
	var (
		fErr *schedule.FieldError
		dErr *schedule.DateError
		tErr *schedule.TariffError
		cErr *schedule.CapacityError
	)
	switch {
	case errors.As(err, &fErr):
		label := fErr.Label
		if label == "" {
			label = fErr.Field
		}
		return fmt.Sprintf("Заполните поле «%s»", label)
	case errors.As(err, &dErr):
		return fmt.Sprintf("Некорректная дата договора «%s», ожидается ДД.ММ.ГГГГ", dErr.Value)
	case errors.As(err, &tErr):
		if tErr.Raw != "" {
			return fmt.Sprintf("Некорректная сумма «%s»", tErr.Raw)
		}
		return fmt.Sprintf("Некорректная сумма «%d»", tErr.Selector)
	case errors.As(err, &cErr):
		return fmt.Sprintf("Тариф на %d мес не помещается в шаблон договора (максимум %d платежей)",
			cErr.Installments, cErr.Capacity)
	case errors.Is(err, schedule.ErrTemplateUnavailable):
		return "Шаблон договора недоступен"
	case errors.Is(err, schedule.ErrInvalidTerms):
		return "Некорректные условия тарифа"
	}
	return "Внутренняя ошибка, попробуйте позже"
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <title>Генератор договора</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 40px auto; padding: 20px; }
        h1 { text-align: center; color: #2c3e50; }
        label { display: block; margin-top: 15px; font-weight: bold; }
        input, select { width: 100%; padding: 10px; margin-top: 5px; box-sizing: border-box; border: 1px solid #ccc; border-radius: 4px; }
        button { display: block; width: 100%; padding: 12px; margin-top: 20px; background: #27ae60; color: white; border: none; border-radius: 4px; cursor: pointer; }
        button:hover { background: #219653; }
        .error { padding: 12px; background: #fdecea; color: #b71c1c; border-radius: 4px; }
    </style>
</head>
<body>
    <h1>Генератор договора</h1>
    {{if .Error}}<p class="error">Ошибка: {{.Error}}</p>{{end}}
    <form method="POST">
        <label>1) Номер договора (1765):</label>
        <input name="contractnum" placeholder="1765" value="{{.Input.ContractNumber}}" required>

        <label>2) Дата договора (22.10.2025):</label>
        <input name="datezakl" placeholder="22.10.2025" value="{{.Input.ContractDate}}" required>

        <label>3) ФИО:</label>
        <input name="fio" placeholder="Парфенов Илья Алексеевич" value="{{.Input.FullName}}" required>

        <label>4) Дата рождения (25.05.2000):</label>
        <input name="datarod" placeholder="25.05.2000" value="{{.Input.BirthDate}}" required>

        <label>5) Паспорт (45 04 123456):</label>
        <input name="passport" placeholder="45 04 123456" value="{{.Input.Passport}}" required>

        <label>6) Стоимость услуг:</label>
        <select name="summa" required>
            <option value="">Выберите сумму</option>
            {{- range .Tariffs}}
            <option value="{{.Price}}"{{if $.Selected .Price}} selected{{end}}>{{.Label}}</option>
            {{- end}}
        </select>

        <label>7) Адрес (г. Санкт-Петербург, ул. Затшига, д. 50, кв. 50):</label>
        <input name="adres" placeholder="г. Санкт-Петербург, ул. Затшига, д. 50, кв. 50" value="{{.Input.Address}}" required>

        <label>8) Телефон (+7 901 943 53 21):</label>
        <input name="phone" placeholder="+79019435321" value="{{.Input.Phone}}" required>

        <button type="submit">Скачать .docx</button>
    </form>
</body>
</html>
`))
