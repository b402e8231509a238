package services

const reminderEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; margin: 0; padding: 0; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #dddddd; border-radius: 8px; }
.header { font-size: 22px; font-weight: bold; color: #1f3a5f; margin-bottom: 15px; }
.button-container { text-align: center; margin: 30px 0; }
.button { color: white !important; padding: 12px 25px; text-decoration: none; display: inline-block; border-radius: 5px; font-weight: bold; margin: 0 8px; }
.yes { background-color: #2e7d32; }
.no { background-color: #9e9e9e; }
.footer { margin-top: 20px; font-size: 12px; color: #777777; text-align: center; }
</style>
</head>
<body>
<div class="container">
<p class="header">Avez-vous reçu le loyer ?</p>
<p>Bonjour %s,</p>
<p>Le loyer de <strong>%s</strong> (<strong>%s</strong>) était attendu le %s.</p>
<p>Confirmez le paiement pour envoyer automatiquement la quittance à votre locataire.</p>
<div class="button-container">
  <a href="%s" class="button yes">Oui, payé</a>
  <a href="%s" class="button no">Pas encore</a>
</div>
<p>Ce lien est valable 7 jours et ne peut être utilisé qu'une seule fois.</p>
<div class="footer">%s</div>
</div>
</body>
</html>`

const receiptEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { padding: 20px; max-width: 600px; margin: auto; border: 1px solid #ddd; border-radius: 5px; }
.header { font-size: 22px; font-weight: bold; color: #1f3a5f; }
.footer { margin-top: 20px; font-size: 12px; color: #777777; }
</style>
</head>
<body>
<div class="container">
<p class="header">Quittance de loyer</p>
<p>Bonjour %s,</p>
<p>Veuillez trouver ci-joint votre quittance de loyer pour <strong>%s</strong> (%s).</p>
<p>Conservez ce document : il atteste du paiement de votre loyer et de vos charges.</p>
<div class="footer">%s</div>
</div>
</body>
</html>`
