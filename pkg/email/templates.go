package email

import "html/template"

var appointmentConfirmationTmpl = template.Must(template.New("appointment_confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #66102B; color: white; padding: 20px; text-align: center;">
    <h1>Confirmación de Cita</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9;">
    <h2>Hola {{.Appointment.ClientName}},</h2>
    <p>Tu cita ha sido <strong>recibida correctamente</strong>. Te contactaremos pronto para confirmar la disponibilidad.</p>
    <div style="background: white; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #66102B; margin-top: 0;">Detalles de la Cita:</h3>
      <p><strong>Fecha:</strong> {{.Date}}</p>
      <p><strong>Hora:</strong> {{.Appointment.Time}}</p>
      <p><strong>Tipo de consulta:</strong> {{.Appointment.ConsultationType}}</p>
      {{if .Appointment.Message}}<p><strong>Mensaje:</strong> {{.Appointment.Message}}</p>{{end}}
    </div>
    <p>Si necesitas cambiar o cancelar tu cita, puedes contactarnos:</p>
    <ul>
      <li><strong>Teléfono:</strong> {{.Business.BusinessPhone}}</li>
      <li><strong>Email:</strong> {{.Business.BusinessEmail}}</li>
    </ul>
    <p style="margin-top: 30px;">Saludos cordiales,<br><strong>{{.Business.BusinessName}}</strong></p>
  </div>
</div>
`))

var appointmentNotificationTmpl = template.Must(template.New("appointment_notification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #66102B; color: white; padding: 20px;">
    <h1>Nueva Cita Agendada</h1>
  </div>
  <div style="padding: 20px;">
    <h2>Detalles del Cliente:</h2>
    <p><strong>Nombre:</strong> {{.Appointment.ClientName}}</p>
    <p><strong>Email:</strong> {{.Appointment.ClientEmail}}</p>
    <p><strong>Teléfono:</strong> {{.Appointment.ClientPhone}}</p>
    <h2>Detalles de la Cita:</h2>
    <p><strong>Fecha:</strong> {{.Date}}</p>
    <p><strong>Hora:</strong> {{.Appointment.Time}}</p>
    <p><strong>Tipo de consulta:</strong> {{.Appointment.ConsultationType}}</p>
    {{if .Appointment.Message}}<p><strong>Mensaje:</strong> {{.Appointment.Message}}</p>{{end}}
  </div>
</div>
`))

var appointmentStatusTmpl = template.Must(template.New("appointment_status").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: {{if .Cancelled}}#dc2626{{else}}#66102B{{end}}; color: white; padding: 20px; text-align: center;">
    <h1>Cita {{.Label}}</h1>
  </div>
  <div style="padding: 20px;">
    <h2>Hola {{.Appointment.ClientName}},</h2>
    <p>Tu cita ha sido <strong>{{.Label}}</strong>.</p>
    <div style="background: #f9f9f9; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3>Detalles de la Cita:</h3>
      <p><strong>Fecha:</strong> {{.Date}}</p>
      <p><strong>Hora:</strong> {{.Appointment.Time}}</p>
      <p><strong>Tipo de consulta:</strong> {{.Appointment.ConsultationType}}</p>
    </div>
    {{if .Confirmed}}<p><strong>Tu cita está confirmada.</strong> Te esperamos en la fecha y hora programada.</p>{{end}}
    {{if .Cancelled}}<p>Si deseas reagendar, puedes contactarnos o usar nuestro sistema de citas online.</p>{{end}}
    <p>Si tienes alguna pregunta, no dudes en contactarnos:</p>
    <ul>
      <li><strong>Teléfono:</strong> {{.Business.BusinessPhone}}</li>
      <li><strong>Email:</strong> {{.Business.BusinessEmail}}</li>
    </ul>
    <p style="margin-top: 30px;">Saludos cordiales,<br><strong>{{.Business.BusinessName}}</strong></p>
  </div>
</div>
`))

var contactConfirmationTmpl = template.Must(template.New("contact_confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #66102B; color: white; padding: 20px; text-align: center;">
    <h1>Mensaje Recibido</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9;">
    <h2>Hola {{.Contact.Name}},</h2>
    <p>Hemos recibido tu mensaje y te contactaremos pronto. Gracias por tu interés en nuestros servicios legales.</p>
    <div style="background: white; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #66102B; margin-top: 0;">Tu mensaje:</h3>
      <p style="font-style: italic;">"{{.Contact.Message}}"</p>
    </div>
    <p>Tiempo estimado de respuesta: <strong>24-48 horas</strong></p>
    <p style="margin-top: 30px;">Saludos cordiales,<br><strong>{{.Business.BusinessName}}</strong></p>
  </div>
</div>
`))

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #66102B; color: white; padding: 20px;">
    <h1>Nuevo Mensaje de Contacto</h1>
  </div>
  <div style="padding: 20px;">
    <h2>Datos del Cliente:</h2>
    <p><strong>Nombre:</strong> {{.Contact.Name}}</p>
    <p><strong>Email:</strong> {{.Contact.Email}}</p>
    {{if .Contact.Phone}}<p><strong>Teléfono:</strong> {{.Contact.Phone}}</p>{{end}}
    <h2>Mensaje:</h2>
    <div style="background: #f9f9f9; padding: 15px; border-radius: 8px;">
      <p>{{.Contact.Message}}</p>
    </div>
  </div>
</div>
`))
