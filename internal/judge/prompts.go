package judge

import (
	"bytes"
	"text/template"
)

const intentSystemPrompt = `Tu única tarea es clasificar el mensaje del usuario en una de estas 4 categorías: AFFIRMATIVE, NEGATIVE, QUESTION, GREETING.
- AFFIRMATIVE: El usuario dice sí, está de acuerdo, o listo para continuar. Ejemplos: "si", "ok", "listo", "dale", "claro que si", "Siiiii".
- NEGATIVE: El usuario dice no, pide esperar, o expresa duda. Ejemplos: "no", "espera un momento", "aún no".
- QUESTION: El usuario está haciendo una pregunta o no entendió algo. Ejemplos: "¿qué es eso?", "no entiendo", "cómo hago para...".
- GREETING: El usuario está saludando. Ejemplos: "hola", "buenos dias".`

const validateSystemPrompt = `Tu única tarea es validar si la descripción del estudiante confirma que obtuvo el resultado correcto. El estudiante puede usar palabras extra o mostrar emoción.`

const gradeSystemPrompt = `Eres un evaluador experto de quizzes de programación. Tu tarea es calificar la respuesta del estudiante. Enfócate en el concepto, no en las palabras exactas.`

var intentUserTemplate = template.Must(template.New("intent").Parse(`Mensaje del usuario: "{{.Text}}"

Responde con la categoría.`))

var validateUserTemplate = template.Must(template.New("validate").Parse(`El resultado esperado del código es: "{{.Expected}}"

La descripción del estudiante de lo que vio en pantalla es: "{{.Description}}"

¿La descripción del estudiante confirma que vio el resultado esperado?`))

var gradeUserTemplate = template.Must(template.New("grade").Parse(`Pregunta del quiz:
"{{.Question}}"
Respuesta del estudiante:
"{{.Answer}}"
¿Es la respuesta del estudiante conceptualmente correcta para la pregunta?`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
