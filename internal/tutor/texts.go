package tutor

import "fmt"

// Directive sent to the retriever when the variables topic begins.
const variablesDirective = "INICIAR_TEMA_VARIABLES"

// ExpectedHelloOutput is what the first exercise prints.
const ExpectedHelloOutput = "¡Hola, Mundo!"

// FallbackReply is returned when no transition produced an answer.
const FallbackReply = "Lo siento, algo no salió como esperaba. ¿Podemos intentar de nuevo?"

const (
	colabInstructions = "¡Perfecto! Empecemos preparando tu espacio de trabajo en <b>Google Colab</b>.\n\n" +
		"1. Abre tu navegador y ve a <b>colab.research.google.com</b>.\n" +
		"2. En el menú, haz clic en <b>'Archivo' → 'Nuevo cuaderno'</b>.\n\n" +
		"Avísame con un 'listo' o similar cuando lo hayas creado."

	startLater = "Sin problema. Cuando quieras empezar, solo dímelo."

	firstExercise = "¡Genial! Ahora, tu primer programa.\n\n" +
		"Escribe en Colab <b>exactamente</b> esto y ejecútalo:\n\n" +
		"<code>print(\"" + ExpectedHelloOutput + "\")</code>\n\n" +
		"Dime qué resultado te apareció en la pantalla."

	colabLater = "No hay prisa. Avísame cuando estés lista para continuar."

	outputCorrect = "¡Exacto! ¡Felicidades, primer programa completado!\n\n" +
		"Ahora que rompiste el hielo, ¿lista para aprender sobre las <b>variables</b>?"

	variablesLater = "Ok, tómate tu tiempo. Avísame cuando estés lista."

	evaluationOffer = "¡Excelente trabajo! Parece que hemos cubierto todos los temas de hoy. " +
		"Para asegurarnos de que todo quedó claro, ¿te gustaría hacer una pequeña prueba de 3 preguntas?"

	evaluationDeclined = "¡No hay problema! Puedes tomar la evaluación cuando quieras escribiendo 'evaluación'. " +
		"Si no, ¡nos vemos mañana para la siguiente lección! 🚀"

	dayComplete = "¡Lección del día completada! 💪 Si tienes más dudas sobre este tema, puedes seguir preguntando. " +
		"Si no, ¡nos vemos mañana para la siguiente lección! 🚀"
)

func welcome(day int) string {
	return fmt.Sprintf("¡Hola! ¡Qué bueno verte! 🙌\n\nBienvenida a la <b>Lección del Día %d</b>. "+
		"¿Lista para empezar con la aventura de hoy?", day)
}

func outputWrong(expected string) string {
	return fmt.Sprintf("Mmm, no es correcto. El resultado debería ser <code>%s</code>.\n\n"+
		"Revisa bien el código, ¡y dime qué obtienes!", expected)
}

// MaterialUnavailableReply is the apology for a lesson day without study
// material.
func MaterialUnavailableReply(day int) string {
	return fmt.Sprintf("No se pudo cargar el material de estudio para el Día %d.", day)
}
