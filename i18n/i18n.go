package i18n

import (
	"fmt"
	"strings"
)

const (
	Russian  = "ru"
	English  = "en"
	Fallback = Russian
)

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// DetectLanguage picks the first supported language of an Accept-Language
// header, or Fallback.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		primary, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if Supported(primary) {
			return primary
		}
	}
	return Fallback
}

// T translates code. Missing entries fall back to the Russian catalog, then
// to the code itself.
func T(lang, code string) string {
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[Fallback][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

var catalogs = map[string]map[string]string{
	Russian: {
		// navigation
		"nav.home":      "Главная",
		"nav.services":  "Услуги",
		"nav.portfolio": "Портфолио",
		"nav.news":      "Новости",
		"nav.about":     "О нас",
		"nav.contacts":  "Контакты",
		"nav.cart":      "Корзина",
		"nav.profile":   "Профиль",
		"nav.orders":    "Мои заказы",
		"nav.admin":     "Админ-панель",
		"nav.login":     "Вход",
		"nav.register":  "Регистрация",
		"nav.logout":    "Выход",

		// pages
		"index.title":          "Организация праздников в Gleeful",
		"index.featured":       "Популярные услуги",
		"index.latest_news":    "Последние новости",
		"services.title":       "Наши услуги",
		"services.all":         "Все",
		"services.empty":       "Услуги не найдены",
		"services.add":         "В корзину",
		"services.in_cart":     "Уже в корзине",
		"services.details":     "Подробнее",
		"portfolio.title":      "Наши работы",
		"news.title":           "Новости",
		"about.title":          "О компании",
		"about.text":           "Gleeful организует детские, взрослые и корпоративные праздники под ключ.",
		"contacts.title":       "Контакты",
		"contacts.send":        "Отправить",
		"cart.title":           "Корзина",
		"cart.empty":           "Ваша корзина пуста",
		"cart.total":           "Итого",
		"cart.remove":          "Удалить",
		"cart.clear":           "Очистить корзину",
		"cart.checkout":        "Оформить заказ",
		"checkout.title":       "Оформление заказа",
		"checkout.submit":      "Подтвердить заказ",
		"profile.title":        "Личный кабинет",
		"profile.orders_count": "Всего заказов",
		"orders.title":         "Мои заказы",
		"orders.empty":         "У вас пока нет заказов",
		"orders.receipt":       "Квитанция (PDF)",
		"admin.title":          "Панель администратора",
		"admin.services":       "Услуги",
		"admin.news":           "Новости",
		"admin.portfolio":      "Портфолио",
		"admin.orders":         "Заказы",
		"admin.users":          "Пользователи",
		"admin.new_orders":     "Новые заказы",
		"admin.save":           "Сохранить",
		"admin.delete":         "Удалить",
		"login.title":          "Вход",
		"register.title":       "Регистрация",
		"error.not_found":      "Страница не найдена",
		"error.internal":       "Что-то пошло не так. Попробуйте позже.",

		// form fields
		"field.username":         "Имя пользователя",
		"field.email":            "Email",
		"field.password":         "Пароль",
		"field.password_confirm": "Повторите пароль",
		"field.phone":            "Контактный телефон",
		"field.event_date":       "Дата мероприятия",
		"field.name":             "Имя",
		"field.message":          "Сообщение",
		"field.title":            "Название",
		"field.description":      "Описание",
		"field.content":          "Текст",
		"field.price":            "Цена",
		"field.category":         "Категория",
		"field.image_url":        "Ссылка на изображение",
		"field.event_type":       "Тип мероприятия",
		"field.status":           "Статус",

		// validation codes
		"required":         "Обязательное поле",
		"too_short":        "Слишком коротко",
		"too_long":         "Слишком длинно",
		"invalid_email":    "Введите корректный email",
		"mismatch":         "Значения не совпадают",
		"not_a_number":     "Введите число",
		"must_be_positive": "Значение должно быть больше нуля",
		"invalid_date":     "Неверный формат даты",
		"in_past":          "Дата не может быть в прошлом",
		"invalid_category": "Неизвестная категория",
		"invalid_status":   "Недопустимый статус",
		"reserved":         "Это имя зарезервировано",

		// flashes
		"flash.added":               "Услуга «%s» добавлена в корзину!",
		"flash.already_in_cart":     "Услуга «%s» уже в корзине!",
		"flash.removed":             "Услуга «%s» удалена из корзины",
		"flash.not_in_cart":         "Этой услуги нет в корзине",
		"flash.cart_cleared":        "Корзина очищена (%d)",
		"flash.cart_items_removed":  "Некоторые услуги больше недоступны и были удалены из корзины",
		"flash.welcome":             "Добро пожаловать, %s!",
		"flash.welcome_merged":      "Добро пожаловать, %s! В корзину перенесено услуг: %d",
		"flash.registered":          "Добро пожаловать в Gleeful, %s! Регистрация успешна.",
		"flash.password_reset":      "Добро пожаловать, %s! Пароль обновлён.",
		"flash.logout":              "До свидания! Ждем вас снова в Gleeful!",
		"flash.already_logged_in":   "Вы уже вошли в систему",
		"flash.invalid_credentials": "Неверный email или пароль",
		"flash.email_reserved":      "Этот email зарезервирован для администратора",
		"flash.username_taken":      "Пользователь с таким именем уже существует",
		"flash.order_placed":        "Заказ №%d оформлен! Сумма: %s",
		"flash.empty_cart":          "Корзина пуста",
		"flash.contact_sent":        "Спасибо! Мы свяжемся с вами в ближайшее время.",
		"flash.saved":               "Изменения сохранены",
		"flash.deleted":             "Запись удалена",
		"flash.service_in_orders":   "Услуга используется в заказах и не может быть удалена",
		"flash.order_closed":        "Заказ закрыт, статус изменить нельзя",
		"flash.forbidden":           "Недостаточно прав",
		"flash.storage_error":       "Произошла ошибка. Попробуйте еще раз.",
		"flash.invalid_form":        "Проверьте правильность заполнения формы",
	},
	English: {
		"nav.home":      "Home",
		"nav.services":  "Services",
		"nav.portfolio": "Portfolio",
		"nav.news":      "News",
		"nav.about":     "About",
		"nav.contacts":  "Contacts",
		"nav.cart":      "Cart",
		"nav.profile":   "Profile",
		"nav.orders":    "My orders",
		"nav.admin":     "Admin",
		"nav.login":     "Log in",
		"nav.register":  "Sign up",
		"nav.logout":    "Log out",

		"index.title":          "Parties by Gleeful",
		"index.featured":       "Popular services",
		"index.latest_news":    "Latest news",
		"services.title":       "Our services",
		"services.all":         "All",
		"services.empty":       "No services found",
		"services.add":         "Add to cart",
		"services.in_cart":     "In cart",
		"services.details":     "Details",
		"portfolio.title":      "Our work",
		"news.title":           "News",
		"about.title":          "About us",
		"about.text":           "Gleeful plans kids', adult and corporate parties end to end.",
		"contacts.title":       "Contacts",
		"contacts.send":        "Send",
		"cart.title":           "Cart",
		"cart.empty":           "Your cart is empty",
		"cart.total":           "Total",
		"cart.remove":          "Remove",
		"cart.clear":           "Clear cart",
		"cart.checkout":        "Checkout",
		"checkout.title":       "Checkout",
		"checkout.submit":      "Place order",
		"profile.title":        "My account",
		"profile.orders_count": "Orders placed",
		"orders.title":         "My orders",
		"orders.empty":         "You have no orders yet",
		"orders.receipt":       "Receipt (PDF)",
		"admin.title":          "Admin dashboard",
		"admin.services":       "Services",
		"admin.news":           "News",
		"admin.portfolio":      "Portfolio",
		"admin.orders":         "Orders",
		"admin.users":          "Users",
		"admin.new_orders":     "New orders",
		"admin.save":           "Save",
		"admin.delete":         "Delete",
		"login.title":          "Log in",
		"register.title":       "Sign up",
		"error.not_found":      "Page not found",
		"error.internal":       "Something went wrong. Please try again later.",

		"field.username":         "Username",
		"field.email":            "Email",
		"field.password":         "Password",
		"field.password_confirm": "Repeat password",
		"field.phone":            "Contact phone",
		"field.event_date":       "Event date",
		"field.name":             "Name",
		"field.message":          "Message",
		"field.title":            "Title",
		"field.description":      "Description",
		"field.content":          "Text",
		"field.price":            "Price",
		"field.category":         "Category",
		"field.image_url":        "Image URL",
		"field.event_type":       "Event type",
		"field.status":           "Status",

		"required":         "Required",
		"too_short":        "Too short",
		"too_long":         "Too long",
		"invalid_email":    "Enter a valid email",
		"mismatch":         "Values do not match",
		"not_a_number":     "Enter a number",
		"must_be_positive": "Must be greater than zero",
		"invalid_date":     "Invalid date",
		"in_past":          "The date cannot be in the past",
		"invalid_category": "Unknown category",
		"invalid_status":   "Invalid status",
		"reserved":         "This name is reserved",

		"flash.added":               "“%s” was added to your cart!",
		"flash.already_in_cart":     "“%s” is already in your cart!",
		"flash.removed":             "“%s” was removed from your cart",
		"flash.not_in_cart":         "That service is not in your cart",
		"flash.cart_cleared":        "Cart cleared (%d)",
		"flash.cart_items_removed":  "Some services are no longer available and were removed from your cart",
		"flash.welcome":             "Welcome, %s!",
		"flash.welcome_merged":      "Welcome, %s! Services moved to your cart: %d",
		"flash.registered":          "Welcome to Gleeful, %s! You are signed up.",
		"flash.password_reset":      "Welcome, %s! Your password was updated.",
		"flash.logout":              "Goodbye! See you again at Gleeful!",
		"flash.already_logged_in":   "You are already logged in",
		"flash.invalid_credentials": "Wrong email or password",
		"flash.email_reserved":      "This email is reserved for the administrator",
		"flash.username_taken":      "That username is taken",
		"flash.order_placed":        "Order #%d placed! Total: %s",
		"flash.empty_cart":          "Your cart is empty",
		"flash.contact_sent":        "Thank you! We will get back to you soon.",
		"flash.saved":               "Saved",
		"flash.deleted":             "Deleted",
		"flash.service_in_orders":   "The service is used by orders and cannot be deleted",
		"flash.order_closed":        "The order is closed; its status cannot change",
		"flash.forbidden":           "Not allowed",
		"flash.storage_error":       "Something went wrong. Please try again.",
		"flash.invalid_form":        "Please check the form",
	},
}
